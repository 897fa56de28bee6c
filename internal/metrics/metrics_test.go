package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrape registers this package's collectors on a fresh registry and returns
// the text exposition.
func scrape(t *testing.T) string {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(Collectors()...)

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestObserve_RecordsCounterAndHistogram(t *testing.T) {
	Observe(ProtocolREST, OutcomeOK, time.Now().Add(-50*time.Millisecond))

	out := scrape(t)
	if !strings.Contains(out, `echoer_requests_total{outcome="ok",protocol="rest"}`) {
		t.Errorf("expected rest/ok counter, got:\n%s", out)
	}
	if !strings.Contains(out, `echoer_request_duration_seconds_count{protocol="rest"}`) {
		t.Errorf("expected rest histogram, got:\n%s", out)
	}
}

func TestFault_RecordsKind(t *testing.T) {
	Fault(ProtocolSOAP, "missing_request_element")

	out := scrape(t)
	if !strings.Contains(out, `echoer_faults_total{kind="missing_request_element",protocol="soap"}`) {
		t.Errorf("expected soap fault counter, got:\n%s", out)
	}
}

func TestInFlight_TracksActiveRequests(t *testing.T) {
	var during string
	h := InFlight(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = scrape(t)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if !strings.Contains(during, "echoer_active_requests 1") {
		t.Errorf("expected one active request while serving, got:\n%s", during)
	}
	if !strings.Contains(scrape(t), "echoer_active_requests 0") {
		t.Error("expected gauge back at zero after the request")
	}
}

func TestHandler_ReturnsPrometheusFormat(t *testing.T) {
	// Register metrics with default registry for handler test
	Init()

	Observe(ProtocolRPC, OutcomeOK, time.Now())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"echoer_requests_total", "echoer_request_duration_seconds", "echoer_active_requests"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
