package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}
	read := func() (*debug.BuildInfo, bool) { return info, true }

	tests := []struct {
		name                  string
		version, commit, date string
		want                  [3]string
	}{
		{"defaults", "dev", "none", "unknown", [3]string{"v0.3.1", "abc123", "2026-10-01T12:00:00Z"}},
		{"ldflags win", "v1.0.0", "fff", "today", [3]string{"v1.0.0", "fff", "today"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)
			Version, Commit, Date = tt.version, tt.commit, tt.date

			fill(read)
			if got := [3]string{Version, Commit, Date}; got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFillDevelBuild(t *testing.T) {
	defer func(v string) { Version = v }(Version)
	Version = "dev"

	fill(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	})
	if Version != "dev" {
		t.Errorf("Version = %q, want dev", Version)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(String(), Version+" (commit ") {
		t.Errorf("String() = %q", String())
	}
}
