package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/linkscope/pkg/errors"
)

const recordExt = ".json"

// FileStore keeps one JSON file per session record, letting a single API
// instance rebuild sessions after a restart.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens dir, creating it if needed. An empty dir means
// ~/.local/state/linkscope/sessions.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "state", "linkscope", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store's directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) file(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}

// readRecord loads the record at path. A missing file yields nil.
func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

// Get returns the record for id, or nil when it is missing, expired or id
// is not a valid session ID.
func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	if errors.ValidateID(id) != nil {
		return nil, nil
	}
	s.mu.RLock()
	rec, err := readRecord(s.file(id))
	s.mu.RUnlock()
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.IsExpired() {
		s.Delete(context.Background(), id)
		return nil, nil
	}
	return rec, nil
}

// Set writes rec through a temporary file so readers never see a partial
// record.
func (s *FileStore) Set(_ context.Context, rec *Record) error {
	if err := errors.ValidateID(rec.ID); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, "."+rec.ID+"-*")
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp.Name(), s.file(rec.ID))
}

// Delete removes the record for id. Missing records are not an error.
func (s *FileStore) Delete(_ context.Context, id string) error {
	if errors.ValidateID(id) != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.file(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Cleanup removes expired records. Files it cannot decode are left alone.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != recordExt {
			continue
		}
		path := filepath.Join(s.dir, name)
		if rec, err := readRecord(path); err == nil && rec != nil && rec.IsExpired() {
			os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
