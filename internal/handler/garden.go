// Package handler contains the HTTP handlers. Handlers stay thin: decode,
// call the service, encode. All domain rules live in internal/service.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/plantcare/internal/middleware"
	"github.com/sakif/plantcare/internal/model"
	"github.com/sakif/plantcare/internal/service"
)

// GardenHandler exposes the caller's garden over HTTP.
type GardenHandler struct {
	garden *service.GardenService
	logger *slog.Logger
}

func NewGardenHandler(garden *service.GardenService, logger *slog.Logger) *GardenHandler {
	return &GardenHandler{garden: garden, logger: logger}
}

// HandleList returns the caller's garden, newest first.
//
// HTTP: GET /api/garden
func (h *GardenHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	entries, err := h.garden.Garden(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list garden",
			slog.String("ownerId", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleAdd saves an identified plant to the caller's garden.
//
// HTTP: POST /api/garden
// REQUEST BODY: {"commonName":"Monstera","confidence":93,"care":{"water":"Every 2-3 days",...},...}
func (h *GardenHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var plant model.IdentifiedPlant
	if err := json.NewDecoder(r.Body).Decode(&plant); err != nil {
		h.logger.Warn("invalid plant JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	entry, err := h.garden.AddPlant(r.Context(), userID, plant)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// HandleWater marks a plant as watered now and returns the updated entry
// with its recomputed schedule.
//
// HTTP: POST /api/garden/{id}/water
func (h *GardenHandler) HandleWater(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Plant ID is required",
		})
		return
	}

	entry, err := h.garden.MarkWatered(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete removes a plant from the caller's garden.
//
// HTTP: DELETE /api/garden/{id}
func (h *GardenHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Plant ID is required",
		})
		return
	}

	if err := h.garden.Remove(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// callerID reads the authenticated user from the request context. A miss
// means the route was mounted without the identity middleware; respond 401
// rather than proceeding with an empty owner.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "user identity required",
		})
	}
	return userID, ok
}
