// internal/httpapi/routes.go
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
	"github.com/tamzrod/water-probe-monitor/internal/status"
	"github.com/tamzrod/water-probe-monitor/internal/task"
)

type handler struct {
	status StatusSource
	latest MeasurementSource
}

func registerRoutes(router chi.Router, h *handler) {
	router.Get("/healthz", h.handleHealth)
	router.Get("/status", h.handleStatus)
	router.Get("/measurement", h.handleMeasurement)
}

type healthResponse struct {
	State  string `json:"state"`
	Health string `json:"health"`
	Fault  string `json:"fault,omitempty"`
}

type statusResponse struct {
	status.Snapshot
	HealthName string `json:"health_name"`
}

type measurementResponse struct {
	probe.Measurement
	Age string `json:"age"`
}

// handleHealth answers 200 only while the task is running.
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	s := h.status.Snapshot()

	code := http.StatusOK
	if s.StateCode != uint16(task.StateRunning) {
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, healthResponse{
		State:  s.State,
		Health: status.HealthName(s.Health),
		Fault:  s.Fault,
	})
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	s := h.status.Snapshot()
	h.writeJSON(w, http.StatusOK, statusResponse{Snapshot: s, HealthName: status.HealthName(s.Health)})
}

func (h *handler) handleMeasurement(w http.ResponseWriter, r *http.Request) {
	if h.latest == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	m, ok := h.latest.Get()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, measurementResponse{
		Measurement: m,
		Age:         time.Since(m.Time).Truncate(time.Millisecond).String(),
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
