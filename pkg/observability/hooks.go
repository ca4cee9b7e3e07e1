// Package observability defines the event hooks linkscope packages emit:
// graph parsing and static rendering, cache hits and writes, session events
// and API requests.
//
// Every hook set defaults to a no-op. main registers real implementations
// at startup ("linkscope serve" registers logging hooks); libraries only
// call the getters:
//
//	observability.Session().OnUploadRejected(ctx, sessionID)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from graph ingestion and static rendering.
type PipelineHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, format, filename string)
	OnParseComplete(ctx context.Context, format, filename string, nodes, edges int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string, nodes int)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from interaction sessions.
type SessionHooks interface {
	// OnEvent records an applied interaction event and the resulting mode.
	OnEvent(ctx context.Context, sessionID, eventType, mode string, duration time.Duration)

	// OnStaleEvent records an event dropped because it targeted an older
	// dataset generation.
	OnStaleEvent(ctx context.Context, sessionID string, generation, current uint64)

	// OnUploadRejected records an upload refused because another one was
	// still in flight for the same session.
	OnUploadRejected(ctx context.Context, sessionID string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, int)                     {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnEvent(context.Context, string, string, string, time.Duration) {}
func (NoopSessionHooks) OnStaleEvent(context.Context, string, uint64, uint64)           {}
func (NoopSessionHooks) OnUploadRejected(context.Context, string)                       {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds one registered hook set. Reads are lock-free.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.p.Store(&h)
}

func (s *slot[T]) reset() { s.p.Store(nil) }

var (
	pipelineHooks = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	cacheHooks    = slot[CacheHooks]{noop: NoopCacheHooks{}}
	sessionHooks  = slot[SessionHooks]{noop: NoopSessionHooks{}}
	httpHooks     = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetPipelineHooks registers pipeline hooks. Call it at startup.
func SetPipelineHooks(h PipelineHooks) { pipelineHooks.set(h) }

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) { cacheHooks.set(h) }

// SetSessionHooks registers session hooks.
func SetSessionHooks(h SessionHooks) { sessionHooks.set(h) }

// SetHTTPHooks registers HTTP hooks.
func SetHTTPHooks(h HTTPHooks) { httpHooks.set(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineHooks.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheHooks.get() }

// Session returns the registered session hooks.
func Session() SessionHooks { return sessionHooks.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpHooks.get() }

// Reset restores the no-op defaults. Tests and "linkscope serve" shutdown
// use it.
func Reset() {
	pipelineHooks.reset()
	cacheHooks.reset()
	sessionHooks.reset()
	httpHooks.reset()
}
