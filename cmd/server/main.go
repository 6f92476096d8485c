package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitrelay/internal/platform/config"
	"fitrelay/internal/platform/health"
	"fitrelay/internal/platform/logger"
	httptransport "fitrelay/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing fitrelay",
		"addr", cfg.Addr,
		"upstream", cfg.UpstreamBaseURL,
	)

	deps, err := buildDependencies(cfg, log)
	if err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	healthHandler := health.New()
	deps.RegisterHealthChecks(healthHandler)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Relay:          httptransport.NewRelayHandler(deps.Relay),
		Connection:     httptransport.NewConnectionHandler(deps.Credentials),
		Health:         healthHandler,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
