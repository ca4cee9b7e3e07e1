package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/linkscope/pkg/encode"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Record is the persisted part of a session. The highlight state is not
// part of it; a rebuilt session starts idle.
type Record struct {
	ID        string        `json:"id"`
	GraphID   string        `json:"graph_id"`
	Config    encode.Config `json:"config"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsExpired reports whether the record has expired.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// Store is the interface for session record backends.
type Store interface {
	// Get retrieves a record by session ID.
	// Returns nil, nil if the record doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Record, error)

	// Set stores a record until its ExpiresAt.
	Set(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired records (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok || rec.IsExpired() {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Set(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.IsExpired() {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ Store = (*MemoryStore)(nil)
