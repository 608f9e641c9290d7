package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"facegate/internal/platform/metrics"
	"facegate/internal/platform/middleware"
)

// requestTimeout bounds every request except proof generation, which carries
// its own per-priority budget; the outer limit just has to exceed it.
const requestTimeout = 90 * time.Second

// NewRouter mounts all endpoints behind the shared middleware chain.
// metricsHandler serves the Prometheus scrape endpoint; pass nil to disable.
func NewRouter(h *Handler, log *slog.Logger, reg *metrics.Metrics, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.LatencyMiddleware(reg))

	r.Post("/prove-face", h.HandleProveFace)
	r.Post("/capture-face", h.HandleCaptureFace)
	r.Post("/generate-proof", h.HandleGenerateProof)
	r.Post("/batch-prove", h.HandleBatchProve)

	r.Post("/score-risk", h.HandleScoreRisk)
	r.Post("/underwrite", h.HandleUnderwrite)

	r.Get("/circuit-health", h.HandleCircuitHealth)
	r.Get("/healthz", h.HandleHealthz)
	r.Get("/metrics-summary", h.HandleMetricsSummary)
	if metricsHandler != nil {
		r.Get("/metrics", metricsHandler.ServeHTTP)
	}

	return r
}
