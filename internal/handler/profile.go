package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/plantcare/internal/service"
)

// ProfileHandler serves the caller's profile statistics.
type ProfileHandler struct {
	garden *service.GardenService
	logger *slog.Logger
}

func NewProfileHandler(garden *service.GardenService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{garden: garden, logger: logger}
}

// HandleStats returns the caller's plant count, completed-task count, and
// recent activity feed.
//
// HTTP: GET /api/profile/stats
// RESPONSE: {"totalPlants":2,"tasksCompleted":5,"recentActivity":[{"text":"...","time":"..."}]}
func (h *ProfileHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	stats, err := h.garden.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
