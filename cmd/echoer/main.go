// Package main is the entry point for the echo service. It loads
// configuration, assembles the middleware stack, starts the HTTP server, and
// handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dskow/echoer/internal/config"
	"github.com/dskow/echoer/internal/handler"
	"github.com/dskow/echoer/internal/logging"
	"github.com/dskow/echoer/internal/metrics"
	"github.com/dskow/echoer/internal/soap"
	"github.com/dskow/echoer/internal/tlsutil"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults and environment only when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	logger, closer, err := logging.New(cfg.Logging, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log output: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	for _, w := range cfg.Warnings {
		logger.Warn("config warning", "message", w)
	}

	logger.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"service_address", cfg.ServiceAddress(),
		"tls_enabled", cfg.Server.TLS.Enabled(),
		"metrics_enabled", cfg.Metrics.IsEnabled(),
		"metrics_path", cfg.Metrics.Path,
		"admin_enabled", cfg.Admin.Enabled,
		"max_body_bytes", cfg.Server.MaxBodyBytes,
		"log_level", cfg.Logging.Level,
	)

	if cfg.Metrics.IsEnabled() {
		metrics.Init()
	}

	echoes := handler.New(soap.NewContract(cfg.ServiceAddress()), logger)

	// Without a file, a reload (admin API) re-reads the environment only.
	reloader := config.NewReloader(*configPath, cfg, logger)
	if *configPath != "" {
		reloader.Start()
		defer reloader.Stop()
	}
	reloader.OnReload(func(newCfg *config.Config) {
		if lvl, err := logging.ParseLevel(newCfg.Logging.Level); err == nil {
			level.Set(lvl)
		}
		echoes.SetContract(soap.NewContract(newCfg.ServiceAddress()))
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHandler(cfg, echoes, reloader, logger),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	if cfg.Server.TLS.Enabled() {
		certs, err := tlsutil.New(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile, logger)
		if err != nil {
			logger.Error("failed to load TLS certificate", "error", err)
			os.Exit(1)
		}
		defer certs.Stop()
		srv.TLSConfig = certs.TLSConfig()
	}

	go func() {
		logger.Info("starting echo service", "addr", srv.Addr, "wsdl", echoes.Contract().TargetNamespace()+"?wsdl")
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("draining in-flight requests", "timeout", cfg.Server.ShutdownTimeout)
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("echo service stopped gracefully")
}
