// Package api serves linkscope over HTTP.
//
// # Endpoints
//
//	GET    /healthz
//	POST   /api/upload                        multipart field "file" (.json, .gexf)
//	GET    /api/graphs/{id}
//	POST   /api/sessions                      {"graph_id": ..., "config": {...}}
//	GET    /api/sessions/{id}/frame           ?zoom=
//	POST   /api/sessions/{id}/events          {"type": "click", "kind": "node", "id": ...}
//	PUT    /api/sessions/{id}/config          partial encode.Config
//	POST   /api/sessions/{id}/upload          multipart field "file"
//	GET    /api/sessions/{id}/snapshot.{fmt}  svg, dot, png, pdf, json
//	DELETE /api/sessions/{id}
//
// A successful upload returns the prepared graph as {"nodes": [...],
// "links": [...]} with the stored document's ID and content hash in the
// X-Graph-ID and X-Graph-Hash headers. Every failure returns a non-2xx
// status with {"error": "..."}.
//
// Uploads on both upload endpoints share one rate limiter. A session accepts
// one replacement upload at a time; a second one gets 409 while the first
// is being parsed.
package api
