package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"promptvault/internal/telemetry"

	"github.com/google/uuid"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id and logs one line per request, at
// error level for 5xx and warn level for 4xx.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := telemetry.WithLogFields(r.Context(), telemetry.LogFields{RequestID: requestID})
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r.WithContext(ctx))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}

			switch {
			case rec.status >= 500:
				logger.ErrorContext(ctx, "request failed", attrs...)
			case rec.status >= 400:
				logger.WarnContext(ctx, "request error", attrs...)
			default:
				logger.InfoContext(ctx, "request", attrs...)
			}
		})
	}
}
