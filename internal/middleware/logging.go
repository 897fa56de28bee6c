// Package middleware provides the HTTP middleware wrapped around the echo
// router: request ids, structured access logs, panic recovery, CORS, security
// headers and body limits.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder wraps http.ResponseWriter to capture the status code and
// the number of body bytes written.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Logging returns middleware that emits one "request" record per request with
// method, path, status, latency, client address and request id. Paths for
// which skip returns true (health probes, metric scrapes) are logged at debug
// level; skip may be nil.
func Logging(logger *slog.Logger, skip func(path string) bool) func(http.Handler) http.Handler {
	if skip == nil {
		skip = func(string) bool { return false }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			level := slog.LevelInfo
			if skip(r.URL.Path) {
				level = slog.LevelDebug
			}
			if !logger.Enabled(r.Context(), level) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.statusCode,
				"bytes", recorder.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"client_ip", r.RemoteAddr,
				"request_id", GetRequestID(r.Context()),
			)
		})
	}
}
