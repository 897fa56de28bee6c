// Package metrics provides Prometheus instrumentation for the echo service.
// Collectors are registered by Init and exposed through Handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Protocol label values.
const (
	ProtocolREST = "rest"
	ProtocolSOAP = "soap"
	ProtocolWSDL = "wsdl"
	ProtocolRPC  = "rpc"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeFault = "fault"
	OutcomeError = "error"
)

var (
	// RequestsTotal counts echo requests by protocol and outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echoer_requests_total",
			Help: "Total echo requests processed",
		},
		[]string{"protocol", "outcome"},
	)

	// RequestDuration observes handler latency in seconds by protocol.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "echoer_request_duration_seconds",
			Help:    "Echo handler latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"protocol"},
	)

	// ActiveRequests tracks the number of in-flight requests.
	ActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "echoer_active_requests",
			Help: "Number of in-flight requests currently being processed",
		},
	)

	// FaultsTotal counts protocol-level failures (SOAP faults, JSON-RPC
	// errors, undecodable bodies) by protocol and kind.
	FaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echoer_faults_total",
			Help: "Total protocol faults returned to clients",
		},
		[]string{"protocol", "kind"},
	)
)

// Collectors returns every collector owned by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{RequestsTotal, RequestDuration, ActiveRequests, FaultsTotal}
}

// Init registers all metric collectors with the default Prometheus registry.
// Must be called once at startup before handling requests.
func Init() {
	prometheus.MustRegister(Collectors()...)
}

// Handler returns an http.Handler that serves the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Observe records one finished request.
func Observe(protocol, outcome string, start time.Time) {
	RequestsTotal.WithLabelValues(protocol, outcome).Inc()
	RequestDuration.WithLabelValues(protocol).Observe(time.Since(start).Seconds())
}

// Fault records a protocol-level failure of the given kind.
func Fault(protocol, kind string) {
	FaultsTotal.WithLabelValues(protocol, kind).Inc()
}

// InFlight returns middleware maintaining ActiveRequests.
func InFlight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ActiveRequests.Inc()
		defer ActiveRequests.Dec()
		next.ServeHTTP(w, r)
	})
}
