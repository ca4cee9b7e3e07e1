// Package httputil provides the response helpers and middleware shared by
// linkscope's HTTP handlers.
//
// # Responses
//
// [JSON] writes a value with a status code. [Error] writes the error body
// every endpoint uses on failure:
//
//	{"error": "Unsupported file type"}
//
// The status comes from [errors.HTTPStatus], so handlers return coded errors
// from pkg/errors and never pick status codes themselves.
//
// # Middleware
//
//   - [RequestLogger]: logs method, path, status and duration through
//     charmbracelet/log and reports them to the HTTP observability hooks
//   - [RateLimit]: token-bucket limiting (golang.org/x/time/rate); excess
//     requests get 429 with a Retry-After header
package httputil
