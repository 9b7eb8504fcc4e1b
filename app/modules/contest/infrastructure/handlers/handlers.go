package contesthandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	contestservice "github.com/wingshot-club/wingshot-bot/app/modules/contest/application"
	"github.com/wingshot-club/wingshot-bot/internal/store"
)

// ContestHandlers exposes roster, schedule, standings, and the admin
// surface over HTTP.
type ContestHandlers struct {
	service contestservice.Service
	logger  *slog.Logger
}

// NewContestHandlers creates a new ContestHandlers instance.
func NewContestHandlers(service contestservice.Service, logger *slog.Logger) *ContestHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContestHandlers{service: service, logger: logger}
}

// GetMembers handles GET /api/members.
func (h *ContestHandlers) GetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.GetMembers(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch members: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// GetMember handles GET /api/members/{memberID}.
func (h *ContestHandlers) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.GetMember(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Member not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch member: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// GetSchedule handles GET /api/schedule.
func (h *ContestHandlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.GetSchedule(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch schedule: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// GetWeek handles GET /api/weeks/{week}.
func (h *ContestHandlers) GetWeek(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}

	week, err := h.service.GetWeek(r.Context(), number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Week not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to fetch week: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// GetStandings handles GET /api/standings.
func (h *ContestHandlers) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.service.GetStandings(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to compute standings: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// SetWeekStatus handles PUT /api/admin/weeks/{week}/status.
func (h *ContestHandlers) SetWeekStatus(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}

	var input struct {
		Status store.WeekStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
		return
	}

	week, err := h.service.SetWeekStatus(r.Context(), number, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Week not found", http.StatusNotFound)
		default:
			http.Error(w, fmt.Sprintf("Failed to update week: %v", err), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// ExportDataset handles GET /api/admin/db.
func (h *ContestHandlers) ExportDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.FullDataset(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to export dataset: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// ReplaceDataset handles PUT /api/admin/db.
func (h *ContestHandlers) ReplaceDataset(w http.ResponseWriter, r *http.Request) {
	var ds store.Dataset
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		http.Error(w, fmt.Sprintf("Failed to decode dataset: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.service.ReplaceDataset(r.Context(), &ds); err != nil {
		if errors.Is(err, store.ErrInvalidDataset) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to replace dataset: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetDataset handles POST /api/admin/reset.
func (h *ContestHandlers) ResetDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetDataset(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to reset dataset: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBackups handles GET /api/admin/backups.
func (h *ContestHandlers) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.service.ListBackups(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list backups: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

// RestoreBackup handles POST /api/admin/backups/{name}/restore.
func (h *ContestHandlers) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.service.RestoreBackup(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Backup not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to restore backup: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportStandings handles GET /api/admin/standings/export.
func (h *ContestHandlers) ExportStandings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="standings.xlsx"`)
	if err := h.service.ExportStandings(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to export standings workbook",
			slog.String("error", err.Error()),
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("Failed to encode response", "error", err)
	}
}
