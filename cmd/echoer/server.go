package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dskow/echoer/internal/admin"
	"github.com/dskow/echoer/internal/config"
	"github.com/dskow/echoer/internal/handler"
	"github.com/dskow/echoer/internal/health"
	"github.com/dskow/echoer/internal/metrics"
	"github.com/dskow/echoer/internal/middleware"
)

// newHandler registers probes, metrics and admin routes next to the echo
// surfaces and wraps the result in the middleware stack:
// Recovery → RequestID → SecurityHeaders → Logging → CORS → InFlight → BodyLimit → Router
func newHandler(cfg *config.Config, echoes *handler.Echo, configs admin.ConfigSource, logger *slog.Logger) http.Handler {
	router := handler.NewRouter(echoes)

	healthHandler := health.New([]health.Check{{
		Name: "wsdl",
		Run: func(ctx context.Context) error {
			_, err := echoes.Contract().WSDL()
			return err
		},
	}}, logger)
	healthHandler.RegisterRoutes(router)

	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.IsEnabled() {
		router.Handle(metricsPath, metrics.Handler()).Methods(http.MethodGet)
		logger.Info("metrics endpoint registered", "path", metricsPath)
	}

	if cfg.Admin.Enabled {
		admin.New(configs, echoes, cfg.Admin.Allowlist, logger).RegisterRoutes(router)
		logger.Info("admin endpoints registered", "allowlist", cfg.Admin.Allowlist)
	}

	// Probes and scrapes are frequent; keep them out of the info-level access log.
	quiet := func(path string) bool {
		return path == "/health" || path == "/ready" || (cfg.Metrics.IsEnabled() && path == metricsPath)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORS.AllowedOrigins

	var h http.Handler = router
	h = middleware.BodyLimit(cfg.Server.MaxBodyBytes)(h)
	h = metrics.InFlight(h)
	h = middleware.CORS(corsCfg)(h)
	h = middleware.Logging(logger, quiet)(h)
	h = middleware.SecurityHeaders()(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)
	return h
}
