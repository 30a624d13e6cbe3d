package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/plantcare/internal/handler"
	"github.com/sakif/plantcare/internal/service"
)

func TestProfileHandler_Stats(t *testing.T) {
	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	profile := handler.NewProfileHandler(env.svc, logger)

	entry := addPlantJSON(t, env, "Every 2 days")
	addPlantJSON(t, env, "Every 5 days")

	waterReq := httptest.NewRequest(http.MethodPost, "/api/garden/"+entry.ID+"/water", nil)
	waterReq.SetPathValue("id", entry.ID)
	require.Equal(t, http.StatusOK, doAs("user-1", env.garden.HandleWater, waterReq).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
	rr := doAs("user-1", profile.HandleStats, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var stats service.ProfileStats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&stats))
	assert.Equal(t, 2, stats.TotalPlants)
	assert.Equal(t, 1, stats.TasksCompleted)
	require.Len(t, stats.RecentActivity, 2)
	assert.Equal(t, "Added Monstera to garden", stats.RecentActivity[0].Text)

	t.Run("no identity header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
		rr := doAs("", profile.HandleStats, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
		rr := doAs("nobody", profile.HandleStats, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
