package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/storage"
)

// GraphLoader fetches stored graph documents. *pipeline.Runner satisfies it.
type GraphLoader interface {
	Load(ctx context.Context, id string) (*storage.Document, error)
}

// Manager owns the live sessions of one API instance.
type Manager struct {
	// Suggest picks the encoding for sessions created without a config.
	// It defaults to [encode.Suggest].
	Suggest func(graph.Schema) encode.Config

	store  Store
	graphs GraphLoader
	ttl    time.Duration
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager. A nil store keeps records in memory; a
// non-positive ttl selects DefaultTTL.
func NewManager(store Store, graphs GraphLoader, ttl time.Duration, logger *log.Logger) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		store:    store,
		graphs:   graphs,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session on a stored graph. A nil cfg selects
// m.Suggest for the graph's schema.
func (m *Manager) Create(ctx context.Context, graphID string, cfg *encode.Config) (*Session, error) {
	doc, err := m.graphs.Load(ctx, graphID)
	if err != nil {
		return nil, err
	}
	suggest := m.Suggest
	if suggest == nil {
		suggest = encode.Suggest
	}
	c := suggest(doc.Graph.Schema())
	if cfg != nil {
		c = *cfg
	}
	s, err := New(doc, c)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, s.record(m.ttl)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "save session")
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session", s.ID(), "graph", doc.ID)
	return s, nil
}

// Get returns a live session, rebuilding it from its record when this
// instance does not hold it.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if errors.ValidateID(id) != nil {
		return nil, notFound(id)
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
		return s, nil
	}

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load session")
	}
	if rec == nil {
		return nil, notFound(id)
	}
	doc, err := m.graphs.Load(ctx, rec.GraphID)
	if err != nil {
		return nil, err
	}
	rebuilt, err := newSession(rec.ID, doc, rec.Config)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	m.sessions[id] = rebuilt
	m.logger.Debug("session restored", "session", id, "graph", rec.GraphID)
	return rebuilt, nil
}

// Save persists the session's record and extends its expiry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if err := m.store.Set(ctx, s.record(m.ttl)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save session")
	}
	return nil
}

// Delete ends a session. Deleting an unknown session is SESSION_NOT_FOUND.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if errors.ValidateID(id) != nil {
		return notFound(id)
	}
	m.mu.Lock()
	_, live := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !live {
		rec, err := m.store.Get(ctx, id)
		if err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "load session")
		}
		if rec == nil {
			return notFound(id)
		}
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete session")
	}
	m.logger.Info("session deleted", "session", id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL from memory and
// removes expired records from the store. It returns the number evicted.
// Evicted sessions whose records are still valid can be rebuilt by Get.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var evicted []string
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	m.mu.Unlock()

	if err := m.store.Cleanup(ctx); err != nil {
		m.logger.Warn("session cleanup failed", "err", err)
	}
	if len(evicted) > 0 {
		m.logger.Debug("evicted idle sessions", "count", len(evicted))
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Close closes the record store.
func (m *Manager) Close() error {
	return m.store.Close()
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
}
