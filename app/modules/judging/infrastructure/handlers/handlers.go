package judginghandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	judgingservice "github.com/wingshot-club/wingshot-bot/app/modules/judging/application"
	"github.com/wingshot-club/wingshot-bot/internal/store"
)

// JudgingHandlers exposes the judgment write-back surface over HTTP.
type JudgingHandlers struct {
	service judgingservice.Service
	logger  *slog.Logger
}

// NewJudgingHandlers creates a new JudgingHandlers instance.
func NewJudgingHandlers(service judgingservice.Service, logger *slog.Logger) *JudgingHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &JudgingHandlers{service: service, logger: logger}
}

// RecordJudgment handles POST /api/judgments.
func (h *JudgingHandlers) RecordJudgment(w http.ResponseWriter, r *http.Request) {
	var j store.Judgment
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.service.RecordJudgment(r.Context(), j); err != nil {
		switch {
		case errors.Is(err, judgingservice.ErrSelfJudgment),
			errors.Is(err, judgingservice.ErrInvalidWinner):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			h.logger.ErrorContext(r.Context(), "Failed to record judgment",
				slog.Int("week", j.Week),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Failed to record judgment", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetJudgment handles GET /api/weeks/{week}/judgments/{memberA}/{memberB}.
func (h *JudgingHandlers) GetJudgment(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}

	j, err := h.service.GetJudgment(r.Context(), week, chi.URLParam(r, "memberA"), chi.URLParam(r, "memberB"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Judgment not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch judgment: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(j); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
