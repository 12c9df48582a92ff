package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/sriamman/reportdesk/internal/history"
	"github.com/sriamman/reportdesk/pkg/reporting"
)

// Fetcher loads the data a report of the given kind is built from.
type Fetcher interface {
	FetchAll(ctx context.Context, kind reporting.ReportKind) (*reporting.ReportInput, error)
}

// HistoryStore records generation attempts and lists recent ones.
type HistoryStore interface {
	Record(ctx context.Context, e history.Entry) error
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// RouterConfig wires the HTTP surface to its collaborators.
type RouterConfig struct {
	// Fetcher serves GET requests. Without one only POST with a body works.
	Fetcher Fetcher
	// History is optional.
	History HistoryStore
	// MaxBodyBytes caps POSTed report input. Defaults to 8 MiB.
	MaxBodyBytes int64
}

// NewRouter builds the report server's handler.
func NewRouter(cfg RouterConfig) http.Handler {
	reports := NewReportingHandlers(cfg.Fetcher, cfg.History, cfg.MaxBodyBytes)

	router := chi.NewRouter()
	router.Use(ErrorHandler)
	router.Use(middleware.RealIP)

	router.Get("/healthz", handleHealth)
	router.Route("/api/reports", func(r chi.Router) {
		r.Get("/history", reports.HandleHistory)
		r.Get("/{kind}", reports.HandleGenerateReport)
		r.Post("/{kind}", reports.HandleGenerateReport)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "not_found", "Route not found", nil)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return router
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if reporting.GetEngine() == nil {
		status = "engine_unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		log.Error().Err(err).Msg("Failed to encode health response")
	}
}
