package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dskow/echoer/internal/apierror"
)

type ctxKey string

// RequestIDKey is the context key used to store the request ID.
const RequestIDKey ctxKey = "request_id"

// RequestID returns middleware that ensures every request has an id. An
// incoming X-Request-ID is preserved; otherwise a new UUID v4 is generated.
// The id is set on the response header and stored in the request context.
// The request header is left untouched so echoed headers show exactly what
// the client sent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(apierror.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(apierror.RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from a context. Returns empty string
// if no request ID is present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
