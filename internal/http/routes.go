package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/sla-summary/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Summaries *service.SLASummaryService
	Logger    *slog.Logger // Logger for handler errors (optional)

	// Readiness checks served on /readyz, keyed by dependency name.
	Readiness map[string]ReadinessCheck
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	if services.Summaries != nil {
		registerSLASummaryRoutes(mux, &SLASummaryHandlers{Svc: services.Summaries, Logger: services.Logger})
	}
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	ready := readyHandler(services.Readiness)
	mux.Handle("GET /readyz", ready)
	mux.Handle("HEAD /readyz", ready)

	return mux
}

func registerSLASummaryRoutes(mux *http.ServeMux, h *SLASummaryHandlers) {
	mux.HandleFunc("GET /api/sla/summaries", h.List)
	mux.HandleFunc("POST /api/sla/summaries", h.Create)
	mux.HandleFunc("GET /api/sla/summaries/{job_id}", h.Get)
	mux.HandleFunc("PUT /api/sla/summaries/{job_id}", h.Put)
	mux.HandleFunc("DELETE /api/sla/summaries/{job_id}", h.Delete)
	mux.HandleFunc("POST /api/sla/summaries/{job_id}/actuals", h.RecordActuals)
	mux.HandleFunc("POST /api/sla/summaries/{job_id}/processed", h.MarkProcessed)
}
