// Package apierror provides the JSON error body used for transport-level
// failures (unknown routes, wrong methods, oversized bodies, panics). Protocol
// errors are answered in the protocol's own format by the handlers.
package apierror

import (
	"encoding/json"
	"net/http"
)

// ErrorCode is a machine-readable error classification string.
type ErrorCode string

// Error codes. Clients program against these, so existing codes are never
// renamed or removed.
const (
	RouteNotFound    ErrorCode = "ECHO_ROUTE_NOT_FOUND"
	MethodNotAllowed ErrorCode = "ECHO_METHOD_NOT_ALLOWED"
	BodyTooLarge     ErrorCode = "ECHO_BODY_TOO_LARGE"
	BodyUnreadable   ErrorCode = "ECHO_BODY_UNREADABLE"
	InternalError    ErrorCode = "ECHO_INTERNAL_ERROR"
	Forbidden        ErrorCode = "ECHO_FORBIDDEN"
	ReloadFailed     ErrorCode = "ECHO_RELOAD_FAILED"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Pre-serialized bodies for the errors a scanner hits most. They carry no
// request_id since that varies per request.
var (
	preRouteNotFound    = mustMarshal(http.StatusNotFound, RouteNotFound, "no matching route")
	preMethodNotAllowed = mustMarshal(http.StatusMethodNotAllowed, MethodNotAllowed, "method not allowed")
)

func mustMarshal(status int, code ErrorCode, message string) []byte {
	b, _ := json.Marshal(ErrorResponse{
		Error:     http.StatusText(status),
		ErrorCode: string(code),
		Message:   message,
	})
	return append(b, '\n')
}

// WriteJSON writes a structured JSON error response. The request id is taken
// from the response's X-Request-ID header (set by the RequestID middleware),
// falling back to the request's. r may be nil.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	requestID := w.Header().Get(RequestIDHeader)
	if requestID == "" && r != nil {
		requestID = r.Header.Get(RequestIDHeader)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if requestID == "" {
		if body := preSerialized(status, code, message); body != nil {
			w.Write(body) //nolint:errcheck
			return
		}
	}

	json.NewEncoder(w).Encode(ErrorResponse{ //nolint:errcheck
		Error:     http.StatusText(status),
		ErrorCode: string(code),
		Message:   message,
		RequestID: requestID,
	})
}

// NotFound is an http.Handler answering RouteNotFound.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, r, http.StatusNotFound, RouteNotFound, "no matching route")
	})
}

// NotAllowed is an http.Handler answering MethodNotAllowed.
func NotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, r, http.StatusMethodNotAllowed, MethodNotAllowed, "method not allowed")
	})
}

func preSerialized(status int, code ErrorCode, message string) []byte {
	switch {
	case code == RouteNotFound && status == http.StatusNotFound && message == "no matching route":
		return preRouteNotFound
	case code == MethodNotAllowed && status == http.StatusMethodNotAllowed && message == "method not allowed":
		return preMethodNotAllowed
	}
	return nil
}
