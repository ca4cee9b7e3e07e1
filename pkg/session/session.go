package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/highlight"
	"github.com/matzehuels/linkscope/pkg/observability"
	"github.com/matzehuels/linkscope/pkg/storage"
)

// View is the published, immutable state of a session.
type View struct {
	Frame      encode.Frame
	Generation uint64
	Document   *storage.Document
}

// Session is one interactive view of a graph.
type Session struct {
	id        string
	createdAt time.Time
	lastSeen  atomic.Int64

	mu         sync.Mutex
	doc        *storage.Document
	enc        *encode.Encoder
	state      highlight.State
	generation uint64

	view      atomic.Pointer[View]
	uploading atomic.Bool
}

// New builds a session for doc with the given encoding config.
func New(doc *storage.Document, cfg encode.Config) (*Session, error) {
	return newSession(uuid.NewString(), doc, cfg)
}

func newSession(id string, doc *storage.Document, cfg encode.Config) (*Session, error) {
	enc, err := encode.Build(doc.Graph, cfg)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:         id,
		createdAt:  time.Now(),
		doc:        doc,
		enc:        enc,
		generation: 1,
	}
	s.touch()
	s.publish()
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastSeen returns the time of the last access.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

func (s *Session) touch() { s.lastSeen.Store(time.Now().UnixNano()) }

// View returns the latest published view. It never blocks.
func (s *Session) View() *View {
	s.touch()
	return s.view.Load()
}

// Generation returns the current dataset generation.
func (s *Session) Generation() uint64 { return s.view.Load().Generation }

// Config returns the current encoding config.
func (s *Session) Config() encode.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Config()
}

// Uploading reports whether a replacement upload is in flight.
func (s *Session) Uploading() bool { return s.uploading.Load() }

// =============================================================================
// Dispatch
// =============================================================================

// Apply converts a wire event to a message and dispatches it. Events whose
// generation is set and differs from the current one are dropped with a
// STALE_GENERATION error; the current view is still returned.
func (s *Session) Apply(ctx context.Context, ev highlight.Event) (*View, highlight.Effect, error) {
	msg, err := ev.Msg()
	if err != nil {
		return nil, highlight.Effect{}, errors.Wrap(errors.ErrCodeInvalidEvent, err, "%v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if ev.Generation != 0 && ev.Generation != s.generation {
		observability.Session().OnStaleEvent(ctx, s.id, ev.Generation, s.generation)
		return s.view.Load(), highlight.Effect{}, errors.New(errors.ErrCodeStaleGeneration,
			"event for generation %d dropped, current generation is %d", ev.Generation, s.generation)
	}

	start := time.Now()
	v, eff := s.dispatch(msg)
	observability.Session().OnEvent(ctx, s.id, ev.Type, v.Frame.State().Mode.String(), time.Since(start))
	return v, eff, nil
}

// Dispatch applies a message directly.
func (s *Session) Dispatch(m highlight.Msg) (*View, highlight.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.dispatch(m)
}

func (s *Session) dispatch(m highlight.Msg) (*View, highlight.Effect) {
	next, eff := highlight.Transition(s.state, m, s.enc.Index())
	s.state = next
	return s.publish(), eff
}

// publish must be called with mu held, or before the session is shared.
func (s *Session) publish() *View {
	v := &View{
		Frame:      s.enc.Frame(s.state),
		Generation: s.generation,
		Document:   s.doc,
	}
	s.view.Store(v)
	return v
}

// =============================================================================
// Reconfiguration
// =============================================================================

// Reconfigure rebuilds the encoder with cfg. The highlight state is kept.
// An invalid config leaves the session unchanged.
func (s *Session) Reconfigure(cfg encode.Config) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	enc, err := encode.Build(s.doc.Graph, cfg)
	if err != nil {
		return nil, err
	}
	s.enc = enc
	return s.publish(), nil
}

// Loader produces the replacement document for [Session.Replace].
type Loader func(ctx context.Context) (*storage.Document, error)

// Replace swaps in a new graph. load runs outside the session lock so
// events keep flowing while a large file is parsed. Only one replacement
// may be in flight; a concurrent call fails with UPLOAD_IN_PROGRESS.
//
// The current config is kept when it is valid for the new graph and
// otherwise replaced by [encode.Suggest]. On success the state resets as on
// reload and the generation increases. On failure nothing changes.
func (s *Session) Replace(ctx context.Context, load Loader) (*View, highlight.Effect, error) {
	if !s.uploading.CompareAndSwap(false, true) {
		observability.Session().OnUploadRejected(ctx, s.id)
		return nil, highlight.Effect{}, errors.New(errors.ErrCodeUploadInProgress, "an upload is already in progress for this session")
	}
	defer s.uploading.Store(false)

	doc, err := load(ctx)
	if err != nil {
		return nil, highlight.Effect{}, err
	}

	cfg := s.Config()
	schema := doc.Graph.Schema()
	if cfg.Validate(schema) != nil {
		cfg = encode.Suggest(schema)
	}
	enc, err := encode.Build(doc.Graph, cfg)
	if err != nil {
		return nil, highlight.Effect{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	next, eff := highlight.Transition(s.state, highlight.Reload{}, enc.Index())
	s.doc = doc
	s.enc = enc
	s.state = next
	s.generation++
	return s.publish(), eff, nil
}

// record returns the persistable part of the session.
func (s *Session) record(ttl time.Duration) *Record {
	v := s.view.Load()
	now := time.Now()
	return &Record{
		ID:        s.id,
		GraphID:   v.Document.ID,
		Config:    v.Frame.Encoder().Config(),
		CreatedAt: s.createdAt,
		ExpiresAt: now.Add(ttl),
	}
}
