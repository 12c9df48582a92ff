package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/sriamman/reportdesk/internal/errors"
	"github.com/sriamman/reportdesk/internal/history"
	"github.com/sriamman/reportdesk/internal/logging"
	"github.com/sriamman/reportdesk/internal/metrics"
	"github.com/sriamman/reportdesk/pkg/reporting"
)

const (
	defaultMaxBodyBytes = 8 << 20
	maxHistoryLimit     = 500
)

// ReportingHandlers handles report generation requests
type ReportingHandlers struct {
	fetcher      Fetcher
	history      HistoryStore
	maxBodyBytes int64
}

// NewReportingHandlers creates a new ReportingHandlers
func NewReportingHandlers(fetcher Fetcher, store HistoryStore, maxBodyBytes int64) *ReportingHandlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &ReportingHandlers{fetcher: fetcher, history: store, maxBodyBytes: maxBodyBytes}
}

// HandleGenerateReport generates a report. GET fetches the data from the
// reports API; POST takes a report input as the JSON body.
func (h *ReportingHandlers) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	engine := reporting.GetEngine()
	if engine == nil {
		writeErrorResponse(w, http.StatusInternalServerError, "engine_unavailable", "Reporting engine not initialized", nil)
		return
	}

	kind, err := reporting.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "unknown_kind", "Report kind must be 'sales' or 'full'", nil)
		return
	}

	format, err := reporting.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'", nil)
		return
	}

	logger := logging.FromContext(r.Context())
	entry := history.Entry{
		ID:        ulid.Make().String(),
		Kind:      string(kind),
		Format:    string(format),
		Source:    history.SourceAPI,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}

	var input *reporting.ReportInput
	switch r.Method {
	case http.MethodPost:
		entry.Source = history.SourceUpload
		input = &reporting.ReportInput{}
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
		if err := dec.Decode(input); err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				writeErrorResponse(w, http.StatusRequestEntityTooLarge, "body_too_large", "Report input is too large", nil)
				return
			}
			writeErrorResponse(w, http.StatusBadRequest, "invalid_input", "Report input must be valid JSON", nil)
			return
		}
	default:
		if h.fetcher == nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, "upstream_unavailable", "Reports API is not configured", nil)
			return
		}
		input, err = h.fetcher.FetchAll(r.Context(), kind)
		if err != nil {
			logger.Error().Err(err).Str("kind", string(kind)).Str("report_id", entry.ID).Msg("Failed to fetch report data")
			entry.Error = err.Error()
			h.record(r.Context(), entry)
			writeErrorResponse(w, errors.HTTPStatus(err), "upstream_error", "Failed to load report data", nil)
			return
		}
	}

	start := time.Now()
	artifact, err := engine.Generate(reporting.ReportRequest{Kind: kind, Format: format, Input: input})
	metrics.RecordReportGenerated(string(kind), string(format), time.Since(start), pagesOf(artifact), err)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Str("report_id", entry.ID).Msg("Report generation failed")
		entry.Error = err.Error()
		h.record(r.Context(), entry)
		writeErrorResponse(w, http.StatusInternalServerError, "generation_failed", "Failed to generate report", nil)
		return
	}

	entry.Filename = artifact.Filename
	entry.Pages = artifact.Pages
	entry.Bytes = len(artifact.Data)
	h.record(r.Context(), entry)

	logger.Info().
		Str("report_id", entry.ID).
		Str("kind", string(kind)).
		Str("format", string(format)).
		Int("pages", artifact.Pages).
		Int("bytes", len(artifact.Data)).
		Msg("Report served")

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("X-Report-ID", entry.ID)
	if _, err := w.Write(artifact.Data); err != nil {
		logger.Warn().Err(err).Str("report_id", entry.ID).Msg("Failed to write report response")
	}
}

// HandleHistory lists recent generation attempts, newest first.
func (h *ReportingHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeErrorResponse(w, http.StatusNotFound, "history_disabled", "Report history is not enabled", nil)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer", nil)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("Failed to list report history")
		writeErrorResponse(w, http.StatusInternalServerError, "history_failed", "Failed to load report history", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"reports": entries}); err != nil {
		log.Error().Err(err).Msg("Failed to encode history response")
	}
}

// record stores the entry without failing the request.
func (h *ReportingHandlers) record(ctx context.Context, e history.Entry) {
	if h.history == nil {
		return
	}
	// Kept even when the client has gone away.
	if err := h.history.Record(context.WithoutCancel(ctx), e); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().Err(err).Str("report_id", e.ID).Msg("Failed to record report history")
	}
}

func pagesOf(a *reporting.Artifact) int {
	if a == nil {
		return 0
	}
	return a.Pages
}
