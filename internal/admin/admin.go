// Package admin exposes health, metrics and pool statistics over HTTP.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ygrebnov/workerpool"
)

// StatsSource reports pool statistics. *workerpool.Pool satisfies it.
type StatsSource interface {
	Stats() workerpool.Stats
}

// Handler returns the admin router. gatherer backs /metrics; a nil gatherer
// uses prometheus.DefaultGatherer.
func Handler(pool StatsSource, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthzHandler(pool))
	r.Get("/stats", statsHandler(pool))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

type healthResponse struct {
	Status string           `json:"status"`
	State  workerpool.State `json:"state"`
}

// healthzHandler returns 200 {"status":"ok"} while the pool accepts jobs,
// and 503 {"status":"unavailable"} once shutdown has begun.
func healthzHandler(pool StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := pool.Stats().State
		resp := healthResponse{Status: "ok", State: state}
		statusCode := http.StatusOK
		if state != workerpool.StateRunning {
			resp.Status = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}
		writeJSON(w, r, statusCode, resp)
	}
}

func statsHandler(pool StatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, pool.Stats())
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "admin: failed to encode response", "error", err)
	}
}
