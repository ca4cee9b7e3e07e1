package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkscope/pkg/cache"
	"github.com/matzehuels/linkscope/pkg/config"
	"github.com/matzehuels/linkscope/pkg/session"
	"github.com/matzehuels/linkscope/pkg/storage"
)

func TestServeFlagsOverrideConfig(t *testing.T) {
	cmd := New(&bytes.Buffer{}, LogInfo).serveCommand()
	if err := cmd.ParseFlags([]string{"--addr", ":9999", "--session-dir", "/tmp/s"}); err != nil {
		t.Fatal(err)
	}

	var opts serveOpts
	opts.addr, opts.sessionDir = ":9999", "/tmp/s"
	cfg := config.Default()
	cfg.Storage.CacheDir = "/var/cache/linkscope"
	opts.apply(cmd, cfg)

	if cfg.Server.Addr != ":9999" || cfg.Storage.SessionDir != "/tmp/s" {
		t.Errorf("flags not applied: %+v %+v", cfg.Server, cfg.Storage)
	}
	if cfg.Storage.CacheDir != "/var/cache/linkscope" {
		t.Errorf("unset flag overrode config: cache dir %q", cfg.Storage.CacheDir)
	}
}

func TestOpenBackendsLocal(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.CacheDir = filepath.Join(dir, "cache")
	cfg.Storage.SessionDir = filepath.Join(dir, "sessions")

	var logs bytes.Buffer
	b, err := openBackends(context.Background(), cfg, log.New(&logs))
	if err != nil {
		t.Fatal(err)
	}
	defer b.close()

	if fc, ok := b.cache.(*cache.FileCache); !ok || fc.Dir() != cfg.Storage.CacheDir {
		t.Errorf("cache = %T", b.cache)
	}
	if _, ok := b.sessions.(*session.FileStore); !ok {
		t.Errorf("sessions = %T", b.sessions)
	}
	if _, ok := b.docs.(*storage.MemoryStore); !ok {
		t.Errorf("docs = %T", b.docs)
	}
	if _, err := os.Stat(cfg.Storage.SessionDir); err != nil {
		t.Errorf("session dir not created: %v", err)
	}
	if !strings.Contains(logs.String(), "using file cache") {
		t.Errorf("backend choice not logged:\n%s", logs.String())
	}
}

func TestOpenBackendsMemorySessions(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.CacheDir = t.TempDir()

	var logs bytes.Buffer
	b, err := openBackends(context.Background(), cfg, log.New(&logs))
	if err != nil {
		t.Fatal(err)
	}
	if b.sessions != nil {
		t.Errorf("sessions = %T, want nil so the manager keeps records in memory", b.sessions)
	}
	if err := b.close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestRunServeShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Storage.CacheDir = t.TempDir()

	var logs bytes.Buffer
	c := New(&logs, LogInfo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.runServe(ctx, cfg) }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("runServe: %v", err)
	}
}
