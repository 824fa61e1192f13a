// internal/httpapi/server.go
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
	"github.com/tamzrod/water-probe-monitor/internal/status"
)

// StatusSource provides the current probe status.
type StatusSource interface {
	Snapshot() status.Snapshot
}

// MeasurementSource provides the most recent measurement, if any.
type MeasurementSource interface {
	Get() (probe.Measurement, bool)
}

// Server exposes the read-only HTTP surface of the monitor.
type Server struct {
	router chi.Router
}

// NewServer builds the router. metrics may be nil.
func NewServer(st StatusSource, latest MeasurementSource, metrics http.Handler) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	h := &handler{status: st, latest: latest}
	registerRoutes(router, h)
	if metrics != nil {
		router.Method(http.MethodGet, "/metrics", metrics)
	}

	return &Server{router: router}
}

// Router returns the configured chi router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
