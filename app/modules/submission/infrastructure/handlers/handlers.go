package submissionhandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	submissionservice "github.com/wingshot-club/wingshot-bot/app/modules/submission/application"
	"github.com/wingshot-club/wingshot-bot/internal/observability"
	"github.com/wingshot-club/wingshot-bot/internal/store"
	"github.com/wingshot-club/wingshot-bot/internal/wire"
)

// SubmissionHandlers exposes the ingestion pipeline over HTTP.
type SubmissionHandlers struct {
	service        submissionservice.Service
	logger         *slog.Logger
	metrics        *observability.Metrics
	maxUploadBytes int64
}

// NewSubmissionHandlers creates a new SubmissionHandlers instance.
func NewSubmissionHandlers(
	service submissionservice.Service,
	logger *slog.Logger,
	metrics *observability.Metrics,
	maxUploadBytes int64,
) *SubmissionHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &SubmissionHandlers{
		service:        service,
		logger:         logger,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateSubmission handles POST /api/weeks/{week}/submissions/{memberID}.
// The whole body is buffered, split by the multipart parser, and handed to
// the service; the caller owns boundary extraction per the parser contract.
func (h *SubmissionHandlers) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}
	memberID := chi.URLParam(r, "memberID")

	boundary := wire.Boundary(r.Header.Get("Content-Type"))
	if boundary == "" {
		h.metrics.ParseFailures.Inc()
		http.Error(w, "Missing multipart boundary", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to read request body: %v", err), http.StatusBadRequest)
		return
	}

	form, err := wire.Parse(body, boundary)
	if err != nil {
		h.metrics.ParseFailures.Inc()
		http.Error(w, fmt.Sprintf("Malformed request: %v", err), http.StatusBadRequest)
		return
	}

	sub, err := h.service.SubmitEntry(r.Context(), week, memberID, form)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, submissionservice.ErrWeekNotOpen):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, submissionservice.ErrMissingSpecies):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.ErrorContext(r.Context(), "Failed to ingest submission",
				slog.Int("week", week),
				slog.String("member_id", memberID),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Failed to store submission", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// GetWeekSubmissions handles GET /api/weeks/{week}/submissions.
func (h *SubmissionHandlers) GetWeekSubmissions(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}

	subs, err := h.service.GetWeekSubmissions(r.Context(), week)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch submissions: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// GetSubmission handles GET /api/weeks/{week}/submissions/{memberID}.
func (h *SubmissionHandlers) GetSubmission(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}
	memberID := chi.URLParam(r, "memberID")

	sub, err := h.service.GetSubmission(r.Context(), week, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Submission not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch submission: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but note it.
		slog.Default().Error("Failed to encode response", "error", err)
	}
}
