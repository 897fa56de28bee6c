// Package admin provides runtime inspection endpoints for the echo service:
// the active configuration, the SOAP contract currently advertised, and a
// manual reload trigger. All endpoints are protected by an IP allowlist.
package admin

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dskow/echoer/internal/apierror"
	"github.com/dskow/echoer/internal/config"
	"github.com/dskow/echoer/internal/soap"
)

// ConfigSource abstracts the config reloader for testability.
type ConfigSource interface {
	Current() *config.Config
	Reload() bool
}

// ContractSource returns the SOAP contract currently in effect.
type ContractSource interface {
	Contract() *soap.Contract
}

// Handler provides admin API endpoints.
type Handler struct {
	configs     ConfigSource
	contracts   ContractSource
	allowedNets []*net.IPNet
	logger      *slog.Logger
}

// New creates a new admin Handler. The allowlist CIDRs must be pre-validated
// (config validation ensures this).
func New(configs ConfigSource, contracts ContractSource, allowlist []string, logger *slog.Logger) *Handler {
	nets := make([]*net.IPNet, 0, len(allowlist))
	for _, cidr := range allowlist {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue // already validated by config
		}
		nets = append(nets, ipNet)
	}
	return &Handler{
		configs:     configs,
		contracts:   contracts,
		allowedNets: nets,
		logger:      logger,
	}
}

// RegisterRoutes adds admin routes to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admin/config", h.guard(h.configHandler)).Methods(http.MethodGet)
	r.HandleFunc("/admin/contract", h.guard(h.contractHandler)).Methods(http.MethodGet)
	r.HandleFunc("/admin/reload", h.guard(h.reloadHandler)).Methods(http.MethodPost)
}

// guard wraps a handler with IP allowlist checking.
func (h *Handler) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r.RemoteAddr)
		if !h.isAllowed(ip) {
			h.logger.Warn("admin access denied", "client_ip", ip, "path", r.URL.Path)
			apierror.WriteJSON(w, r, http.StatusForbidden, apierror.Forbidden, "client is not in the admin allowlist")
			return
		}
		next(w, r)
	}
}

func (h *Handler) isAllowed(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, n := range h.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func (h *Handler) configHandler(w http.ResponseWriter, r *http.Request) {
	cfg := *h.configs.Current()
	if cfg.Warnings == nil {
		cfg.Warnings = []string{}
	}
	writeJSON(w, http.StatusOK, struct {
		config.Config
		Warnings []string `json:"warnings"`
	}{cfg, cfg.Warnings})
}

// contractStatus is the response type for /admin/contract.
type contractStatus struct {
	ServiceAddress  string            `json:"service_address"`
	TargetNamespace string            `json:"target_namespace"`
	SOAPAction      string            `json:"soap_action"`
	Location        string            `json:"location"`
	Namespaces      map[string]string `json:"namespaces"`
}

func (h *Handler) contractHandler(w http.ResponseWriter, r *http.Request) {
	c := h.contracts.Contract()
	writeJSON(w, http.StatusOK, contractStatus{
		ServiceAddress:  c.ServiceAddress,
		TargetNamespace: c.TargetNamespace(),
		SOAPAction:      c.SOAPAction(),
		Location:        c.Location(),
		Namespaces: map[string]string{
			"wsdl":     c.NS.WSDL,
			"soap":     c.NS.Binding,
			"xsd":      c.NS.XSD,
			"envelope": c.NS.Envelope,
		},
	})
}

func (h *Handler) reloadHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("reload requested via admin API", "client_ip", extractIP(r.RemoteAddr))
	if !h.configs.Reload() {
		apierror.WriteJSON(w, r, http.StatusUnprocessableEntity, apierror.ReloadFailed,
			"new configuration is invalid; the current one stays in effect")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reloaded": true})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
