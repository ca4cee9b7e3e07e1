package httputil

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/matzehuels/linkscope/pkg/errors"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

// ErrorBody is the response body of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// Error writes err as an [ErrorBody] with the status mapped from its code.
// Rate-limited errors also set Retry-After in whole seconds.
func Error(w http.ResponseWriter, err error) {
	if d := errors.RetryAfter(err); d > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
	}
	JSON(w, errors.HTTPStatus(err), ErrorBody{Error: errors.UserMessage(err)})
}

// Bytes writes a raw body with the given content type.
func Bytes(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
// Failures are INVALID_INPUT errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}
