package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidAttribute, "unknown node attribute %q", "tier"), `INVALID_ATTRIBUTE: unknown node attribute "tier"`},
		{"wrapped", Wrap(ErrCodeParse, errors.New("unexpected EOF"), "Error parsing file"), "PARSE_ERROR: Error parsing file: unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := fmt.Errorf("dial tcp: %w", errors.New("connection refused"))
	err := Wrap(ErrCodeStorage, cause, "graph store unavailable")

	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("standard errors.Is does not see the cause")
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeSessionNotFound, "Session not found")
	tests := []struct {
		name     string
		err      error
		code     Code
		message  string
		matchSet Code
	}{
		{"coded", New(ErrCodeUploadInProgress, "Upload already in progress"), ErrCodeUploadInProgress, "Upload already in progress", ErrCodeUploadInProgress},
		{"fmt wrapped", fmt.Errorf("load: %w", inner), ErrCodeSessionNotFound, "Session not found", ErrCodeSessionNotFound},
		{"outermost wins", Wrap(ErrCodeInternal, inner, "rebuild failed"), ErrCodeInternal, "rebuild failed", ErrCodeInternal},
		{"uncoded", errors.New("boom"), "", "boom", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
			if tt.matchSet != "" && !Is(tt.err, tt.matchSet) {
				t.Errorf("Is(%q) = false", tt.matchSet)
			}
			if Is(tt.err, ErrCodeRateLimited) {
				t.Error("Is matched an unrelated code")
			}
		})
	}
	if Is(nil, ErrCodeInternal) || GetCode(nil) != "" {
		t.Error("nil error has a code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported format", New(ErrCodeUnsupportedFormat, "Unsupported file type"), http.StatusBadRequest},
		{"no file", New(ErrCodeInvalidUpload, "No file part"), http.StatusBadRequest},
		{"unknown attribute", New(ErrCodeInvalidAttribute, "x"), http.StatusBadRequest},
		{"parse failure", Wrap(ErrCodeParse, errors.New("eof"), "decode"), http.StatusInternalServerError},
		{"session missing", New(ErrCodeSessionNotFound, "x"), http.StatusNotFound},
		{"graph missing", New(ErrCodeGraphNotFound, "x"), http.StatusNotFound},
		{"upload in flight", New(ErrCodeUploadInProgress, "x"), http.StatusConflict},
		{"stale generation", New(ErrCodeStaleGeneration, "x"), http.StatusConflict},
		{"rate limited", Limited(time.Second, "x"), http.StatusTooManyRequests},
		{"storage", New(ErrCodeStorage, "x"), http.StatusServiceUnavailable},
		{"wrapped", Wrap(ErrCodeInternal, New(ErrCodeSessionNotFound, "inner"), "outer"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	err := fmt.Errorf("upload: %w", Limited(1500*time.Millisecond, "Too many uploads"))
	if got := RetryAfter(err); got != 1500*time.Millisecond {
		t.Errorf("RetryAfter() = %v", got)
	}
	if !Is(err, ErrCodeRateLimited) {
		t.Error("Limited error is not RATE_LIMITED")
	}
	if RetryAfter(New(ErrCodeInvalidInput, "x")) != 0 || RetryAfter(errors.New("x")) != 0 {
		t.Error("RetryAfter set on an unrelated error")
	}
}
