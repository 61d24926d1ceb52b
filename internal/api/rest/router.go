package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidleathers/voice-outreach-backend/internal/metrics"
)

// RouterOptions carries the cross-cutting pieces the router wires in.
type RouterOptions struct {
	Logger    *slog.Logger
	Registry  *metrics.Registry
	JWTSecret string
}

// NewRouter builds the HTTP routing table with the standard middleware
// stack. DELETE /logs requires a bearer token when a secret is configured.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", h.handleWebhook)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /logs", h.handleGetLogs)
	mux.HandleFunc("GET /stats", h.handleGetStats)
	mux.Handle("GET /metrics", promhttp.Handler())

	deleteLogs := http.Handler(http.HandlerFunc(h.handleDeleteLogs))
	if opts.JWTSecret != "" {
		deleteLogs = authMiddleware(opts.JWTSecret)(deleteLogs)
	}
	mux.Handle("DELETE /logs", deleteLogs)

	return Chain(mux,
		requestIDMiddleware,
		recoveryMiddleware(logger),
		loggingMiddleware(logger),
		metricsMiddleware(opts.Registry),
	)
}
