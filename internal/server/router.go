package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"appdeployer/internal/reconciler"
)

// StatusSource is the view of the reconciliation manager the HTTP surface needs.
type StatusSource interface {
	IsReady() bool
	GetStatus(name string) (reconciler.ReconcileStatus, bool)
	GetAllStatuses() []reconciler.ReconcileStatus
	Metrics() *reconciler.Metrics
}

// StatusReport is the body of GET /status.
type StatusReport struct {
	Applications []reconciler.ReconcileStatus `json:"applications"`
	Summary      reconciler.MetricsSummary    `json:"summary"`
}

// NewRouter builds the worker's HTTP handler. gatherer backs /metrics and
// may be nil, in which case the endpoint is not mounted.
func NewRouter(src StatusSource, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !src.IsReady() {
			writeErrorMessage(w, http.StatusServiceUnavailable, "not consuming")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/status", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, StatusReport{
				Applications: src.GetAllStatuses(),
				Summary:      src.Metrics().Summary(),
			})
		})
		r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			status, ok := src.GetStatus(name)
			if !ok {
				writeErrorMessage(w, http.StatusNotFound, "no status for application "+name)
				return
			}
			writeJSON(w, http.StatusOK, status)
		})
	})

	return r
}
