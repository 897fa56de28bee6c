package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dskow/echoer/internal/apierror"
)

// BodyLimit returns middleware that limits the size of request bodies.
// A known Content-Length over maxBytes is rejected with 413 before the
// handler runs; otherwise the body is wrapped with http.MaxBytesReader and the
// handler reports the overflow through WriteBodyLimitError.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteBodyLimitError(w, r, maxBytes)
				return
			}
			if r.Body != nil && r.ContentLength != 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyLimitError reports whether err came from a MaxBytesReader and returns
// the limit it enforced.
func IsBodyLimitError(err error) (int64, bool) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return mbe.Limit, true
	}
	return 0, false
}

// WriteBodyLimitError writes a 413 JSON error response.
func WriteBodyLimitError(w http.ResponseWriter, r *http.Request, limit int64) {
	apierror.WriteJSON(w, r, http.StatusRequestEntityTooLarge, apierror.BodyTooLarge,
		fmt.Sprintf("request body exceeds %d bytes", limit))
}
