package storage

import (
	"context"
	"sync"

	"github.com/matzehuels/linkscope/pkg/errors"
)

// MemoryStore keeps documents in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

func (s *MemoryStore) Put(_ context.Context, doc *Document) error {
	if doc.ID == "" {
		doc.ID = NewID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeGraphNotFound, "graph %q not found", id)
	}
	return doc, nil
}

func (s *MemoryStore) FindByHash(_ context.Context, hash string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *Document
	for _, doc := range s.docs {
		if doc.Hash != hash {
			continue
		}
		if found == nil || doc.CreatedAt.After(found.CreatedAt) {
			found = doc
		}
	}
	return found, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

var _ Store = (*MemoryStore)(nil)
