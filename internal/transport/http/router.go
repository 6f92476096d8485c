// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and keep transport concerns (routing, middleware, JSON envelopes)
// out of the domain packages.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitrelay/internal/platform/health"
	"fitrelay/internal/platform/middleware"
	"fitrelay/internal/transport/http/json"
	httpErrors "fitrelay/pkg/http-errors"
)

// RouterConfig carries the handlers and settings the router wires together.
type RouterConfig struct {
	Relay          *RelayHandler
	Connection     *ConnectionHandler
	Health         *health.Handler
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Post("/api/relay", cfg.Relay.handleRelay)
	r.Get("/api/connection/{userID}", cfg.Connection.handleStatus)
	r.Delete("/api/connection/{userID}", cfg.Connection.handleDisconnect)

	cfg.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// writeError translates a domain error into the JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status, code := httpErrors.StatusFor(err)
	json.WriteError(w, status, string(code), err.Error())
}
