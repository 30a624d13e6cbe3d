package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/plantcare/internal/reminder"
)

// CronHandler is the hook for an external scheduler (a platform cron job
// hitting the service over HTTP). Each call runs one reminder sweep and
// reports what happened, so the cron logs double as delivery logs.
type CronHandler struct {
	engine *reminder.Engine
	logger *slog.Logger
}

func NewCronHandler(engine *reminder.Engine, logger *slog.Logger) *CronHandler {
	return &CronHandler{engine: engine, logger: logger}
}

// HandleWateringReminders runs a sweep over all due entries.
//
// HTTP: GET /api/cron/watering-reminders  (X-Cron-Secret required)
// RESPONSE: {"due":3,"sent":2,"skipped":1,"failed":0,"errors":0}
func (h *CronHandler) HandleWateringReminders(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.RunSweepTick(r.Context())
	if err != nil {
		h.logger.Error("reminder sweep failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "reminder sweep failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}
