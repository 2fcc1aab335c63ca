// Package httpx provides the JSON HTTP API for SLA summaries.
package httpx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/target/sla-summary/internal/domain/model"
	apperrors "github.com/target/sla-summary/internal/errors"
	"github.com/target/sla-summary/internal/service"
)

// SLASummaryHandlers provides HTTP handlers for SLA summary operations.
type SLASummaryHandlers struct {
	Svc    *service.SLASummaryService
	Logger *slog.Logger
}

// processedRequest is the body of POST /api/sla/summaries/{job_id}/processed.
type processedRequest struct {
	Stage *int8 `json:"stage"`
}

// Get returns one summary. The optional tz query parameter selects the zone
// used to render timestamps.
func (h *SLASummaryHandlers) Get(w http.ResponseWriter, r *http.Request) {
	loc := time.UTC
	if tz := strings.TrimSpace(r.URL.Query().Get("tz")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			h.fail(w, r, apperrors.ValidationField("tz", "unknown time zone "+tz))
			return
		}
		loc = l
	}

	summary, err := h.Svc.Get(r.Context(), r.PathValue("job_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary.JSONObject(loc))
}

// List returns summaries matching the filter query parameters.
func (h *SLASummaryHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseSummaryListOptions(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []*model.SLASummary{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"items":  items,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// Put upserts a full record at the path's job id.
func (h *SLASummaryHandlers) Put(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	var summary model.SLASummary
	if !DecodeJSON(w, r, &summary) {
		return
	}
	switch summary.JobID {
	case "":
		summary.JobID = jobID
	case jobID:
	default:
		h.fail(w, r, apperrors.ValidationField("job_id", "job_id in body does not match path"))
		return
	}

	saved, err := h.Svc.Save(r.Context(), &summary)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// Create registers a summary from an SLA calculation status payload.
func (h *SLASummaryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var calc model.SLACalcStatus
	if !DecodeJSON(w, r, &calc) {
		return
	}

	summary, err := h.Svc.RegisterFromCalc(r.Context(), &calc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, summary)
}

// RecordActuals applies observed start and end times.
func (h *SLASummaryHandlers) RecordActuals(w http.ResponseWriter, r *http.Request) {
	var actuals model.SLASummaryActuals
	if !DecodeJSON(w, r, &actuals) {
		return
	}

	summary, err := h.Svc.RecordActuals(r.Context(), r.PathValue("job_id"), actuals)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// MarkProcessed sets the processing stage.
func (h *SLASummaryHandlers) MarkProcessed(w http.ResponseWriter, r *http.Request) {
	var req processedRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Stage == nil {
		h.fail(w, r, apperrors.ValidationField("stage", "stage is required"))
		return
	}

	if err := h.Svc.MarkProcessed(r.Context(), r.PathValue("job_id"), *req.Stage); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a summary.
func (h *SLASummaryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("job_id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SLASummaryHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if StatusForError(err) == http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "sla summary request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
	WriteAppError(w, err)
}

func (h *SLASummaryHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
