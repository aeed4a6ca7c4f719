// Package httpapi assembles the HTTP surface: the WebSocket upgrade route,
// an operator status endpoint, and a Prometheus scrape endpoint, wired
// together the way the teacher's cmd/main.go builds its chi router.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pairsignal/internal/core"
)

// WebSocketHandler is implemented by the Transport Adapter's Server.
type WebSocketHandler interface {
	HandleWebRTCConnection(w http.ResponseWriter, r *http.Request)
}

// StatusSource answers a point-in-time Snapshot for the /status endpoint.
type StatusSource func() core.Snapshot

// NewRouter builds the full HTTP surface, grounded on the teacher's chi
// router assembly, with the middleware chain SPEC_FULL.md §4.5 specifies:
// middleware.RequestID, middleware.Logger, a CORS middleware, then recovery.
func NewRouter(ws WebSocketHandler, status StatusSource, registry *prometheus.Registry, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(cors(allowedOrigins))
	r.Use(recovery(logger))

	r.Get("/", handleLiveness)
	r.Get("/signal", ws.HandleWebRTCConnection)
	r.Get("/status", handleStatus(status))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}
