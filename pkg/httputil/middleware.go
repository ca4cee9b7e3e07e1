package httputil

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/observability"
)

// RequestLogger logs every request once it completes. Server errors are
// logged at error level, client errors at warn, everything else at info.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, elapsed)

			kv := []any{"method", r.Method, "path", r.URL.Path, "status", status, "bytes", ww.BytesWritten(), "duration", elapsed}
			switch {
			case status >= 500:
				logger.Error("request", kv...)
			case status >= 400:
				logger.Warn("request", kv...)
			default:
				logger.Info("request", kv...)
			}
		})
	}
}

// RateLimit rejects requests that exceed the limiter with 429. A nil
// limiter disables limiting.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Reserve()
			if !res.OK() {
				Error(w, errors.New(errors.ErrCodeRateLimited, "Too many uploads, try again later"))
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				Error(w, errors.Limited(delay, "Too many uploads, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewLimiter returns a limiter allowing perSecond requests on average with
// the given burst, or nil when perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}
