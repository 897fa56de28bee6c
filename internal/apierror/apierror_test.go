package apierror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON_BasicFields(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteJSON(w, r, http.StatusNotFound, RouteNotFound, "no matching route")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error != "Not Found" {
		t.Errorf("error = %q, want %q", resp.Error, "Not Found")
	}
	if resp.ErrorCode != "ECHO_ROUTE_NOT_FOUND" {
		t.Errorf("error_code = %q, want %q", resp.ErrorCode, "ECHO_ROUTE_NOT_FOUND")
	}
	if resp.Message != "no matching route" {
		t.Errorf("message = %q, want %q", resp.Message, "no matching route")
	}
}

func TestWriteJSON_RequestIDFromResponseHeader(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set(RequestIDHeader, "resp-id")
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(RequestIDHeader, "req-id")

	WriteJSON(w, r, http.StatusMethodNotAllowed, MethodNotAllowed, "method not allowed")

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.RequestID != "resp-id" {
		t.Errorf("request_id = %q, want %q", resp.RequestID, "resp-id")
	}
}

func TestWriteJSON_RequestIDFromRequestHeader(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(RequestIDHeader, "test-req-123")

	WriteJSON(w, r, http.StatusRequestEntityTooLarge, BodyTooLarge, "request body exceeds 10 bytes")

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.RequestID != "test-req-123" {
		t.Errorf("request_id = %q, want %q", resp.RequestID, "test-req-123")
	}
	if resp.Error != "Request Entity Too Large" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestWriteJSON_OmitsEmptyRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	WriteJSON(w, r, http.StatusNotFound, RouteNotFound, "no matching route")

	var raw map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, exists := raw["request_id"]; exists {
		t.Error("request_id should be omitted when empty")
	}
}

func TestWriteJSON_NilRequest(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, nil, http.StatusInternalServerError, InternalError, "an unexpected error occurred")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ErrorCode != "ECHO_INTERNAL_ERROR" {
		t.Errorf("error_code = %q, want %q", resp.ErrorCode, "ECHO_INTERNAL_ERROR")
	}
}

func TestNotFoundAndNotAllowedHandlers(t *testing.T) {
	tests := []struct {
		name   string
		h      http.Handler
		status int
		code   ErrorCode
	}{
		{"not found", NotFound(), http.StatusNotFound, RouteNotFound},
		{"not allowed", NotAllowed(), http.StatusMethodNotAllowed, MethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), string(tt.code)) {
				t.Errorf("body %q missing %s", w.Body.String(), tt.code)
			}
		})
	}
}

func TestAllErrorCodes(t *testing.T) {
	codes := []ErrorCode{RouteNotFound, MethodNotAllowed, BodyTooLarge, BodyUnreadable, InternalError, Forbidden, ReloadFailed}
	for _, code := range codes {
		if !strings.HasPrefix(string(code), "ECHO_") {
			t.Errorf("code %q does not have ECHO_ prefix", code)
		}
	}
}
