// Package session hosts live interaction sessions: one graph, one encoder
// and one highlight state per connected view.
//
// # Concurrency
//
// A [Session] serializes message dispatch with a mutex and publishes every
// resulting frame through an atomic pointer. Renderers call [Session.View]
// on each redraw without ever waiting for an event to finish; they always
// see a complete, immutable frame.
//
// # Uploads
//
// Replacing a session's graph is guarded: while one upload is in flight a
// second one is rejected with UPLOAD_IN_PROGRESS instead of queueing. A
// successful replacement swaps graph, encoder and state in one step and
// bumps the session's generation. Events that carry an older generation
// were produced against the previous dataset and are dropped with
// STALE_GENERATION. A failed replacement leaves the session untouched.
//
// # Persistence
//
// Interaction state is never persisted. A [Manager] keeps live sessions in
// memory and writes a small [Record] (graph ID and encoding config) to a
// [Store], so another API instance, or the same one after a restart, can
// rebuild the session with a fresh idle state. Stores:
//   - [MemoryStore]: process-local
//   - [FileStore]: JSON files in a directory, survives restarts
//   - [RedisStore]: shared by every API instance
package session
