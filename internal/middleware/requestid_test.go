package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// seen is what the wrapped handler observed for one request.
type seen struct {
	contextID string
	headerIDs []string
}

func serveRequestID(t *testing.T, incoming []string) (seen, *httptest.ResponseRecorder) {
	t.Helper()
	var got seen
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.contextID = GetRequestID(r.Context())
		got.headerIDs = r.Header.Values("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/echo/rest", nil)
	for _, id := range incoming {
		req.Header.Add("X-Request-ID", id)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, rec
}

func TestRequestID_Generated(t *testing.T) {
	got, rec := serveRequestID(t, nil)

	parsed, err := uuid.Parse(got.contextID)
	if err != nil {
		t.Fatalf("context id %q is not a UUID: %v", got.contextID, err)
	}
	if parsed.Version() != 4 {
		t.Errorf("UUID version = %d, want 4", parsed.Version())
	}
	if rec.Header().Get("X-Request-ID") != got.contextID {
		t.Errorf("response id %q != context id %q", rec.Header().Get("X-Request-ID"), got.contextID)
	}
	// The generated id must not leak into the echoed request headers.
	if len(got.headerIDs) != 0 {
		t.Errorf("request headers gained X-Request-ID %v", got.headerIDs)
	}
}

func TestRequestID_ClientValue(t *testing.T) {
	tests := []struct {
		name     string
		incoming []string
		wantID   string
	}{
		{"single", []string{"client-id-1"}, "client-id-1"},
		{"repeated header uses first", []string{"first", "second"}, "first"},
		{"arbitrary text", []string{"<not a uuid>"}, "<not a uuid>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rec := serveRequestID(t, tt.incoming)

			if got.contextID != tt.wantID {
				t.Errorf("context id = %q, want %q", got.contextID, tt.wantID)
			}
			if id := rec.Header().Get("X-Request-ID"); id != tt.wantID {
				t.Errorf("response id = %q, want %q", id, tt.wantID)
			}
			if len(got.headerIDs) != len(tt.incoming) {
				t.Fatalf("request header values = %v, want %v", got.headerIDs, tt.incoming)
			}
			for i := range tt.incoming {
				if got.headerIDs[i] != tt.incoming[i] {
					t.Errorf("request header value %d = %q, want %q", i, got.headerIDs[i], tt.incoming[i])
				}
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		_, rec := serveRequestID(t, nil)
		id := rec.Header().Get("X-Request-ID")
		if ids[id] {
			t.Fatalf("duplicate request ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty string for context without request ID, got %q", id)
	}
}
