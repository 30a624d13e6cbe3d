package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/plantcare/internal/handler"
	"github.com/sakif/plantcare/internal/middleware"
	"github.com/sakif/plantcare/internal/model"
	"github.com/sakif/plantcare/internal/notify"
	sqliteRepo "github.com/sakif/plantcare/internal/repository/sqlite"
	"github.com/sakif/plantcare/internal/service"
)

// testEnv wires a real service over an in-memory database so handler tests
// exercise the full decode → service → store path.
type testEnv struct {
	db     *sqliteRepo.DB
	garden *handler.GardenHandler
	svc    *service.GardenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewGardenService(db, db, notify.Discard{}, service.NopScheduler{}, logger)

	require.NoError(t, db.CreateUser(context.Background(), &model.User{
		ID:            "user-1",
		Name:          "Ayesha",
		Email:         "a@example.com",
		Notifications: true,
	}))

	return &testEnv{
		db:     db,
		garden: handler.NewGardenHandler(svc, logger),
		svc:    svc,
	}
}

// doAs routes the request through the identity middleware the way the real
// router does, so handlers see the user ID in the context.
func doAs(userID string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rr := httptest.NewRecorder()
	middleware.RequireUser(h).ServeHTTP(rr, req)
	return rr
}

func addPlantJSON(t *testing.T, env *testEnv, water string) model.GardenEntry {
	t.Helper()

	body := map[string]any{
		"commonName":     "Monstera",
		"scientificName": "Monstera deliciosa",
		"confidence":     93,
		"family":         "Araceae",
		"care":           map[string]string{"water": water, "light": "Bright indirect"},
	}
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/garden", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rr := doAs("user-1", env.garden.HandleAdd, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var entry model.GardenEntry
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&entry))
	return entry
}

func TestGardenHandler_Add(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates entry with derived schedule", func(t *testing.T) {
		entry := addPlantJSON(t, env, "Water every 2 days")

		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "user-1", entry.OwnerID)
		assert.Equal(t, "Monstera", entry.CommonName)
		wantNext := entry.LastWatered.Add(2 * 24 * time.Hour)
		assert.True(t, entry.NextWatering.Equal(wantNext),
			"NextWatering = %v, want %v", entry.NextWatering, wantNext)
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/garden", bytes.NewBufferString(`{"commonName":`))
		rr := doAs("user-1", env.garden.HandleAdd, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing plant name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/garden", bytes.NewBufferString(`{"confidence":50}`))
		rr := doAs("user-1", env.garden.HandleAdd, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var errRes handler.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
		assert.Equal(t, "validation_error", errRes.Error)
	})

	t.Run("unknown owner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/garden",
			bytes.NewBufferString(`{"commonName":"Fern","care":{"water":"Every 3 days"}}`))
		rr := doAs("nobody", env.garden.HandleAdd, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("no identity header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/garden",
			bytes.NewBufferString(`{"commonName":"Fern"}`))
		rr := doAs("", env.garden.HandleAdd, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGardenHandler_List(t *testing.T) {
	env := newTestEnv(t)
	addPlantJSON(t, env, "Every 2 days")
	addPlantJSON(t, env, "Every 5 days")

	req := httptest.NewRequest(http.MethodGet, "/api/garden", nil)
	rr := doAs("user-1", env.garden.HandleList, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var entries []model.GardenEntry
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&entries))
	assert.Len(t, entries, 2)
}

func TestGardenHandler_Water(t *testing.T) {
	env := newTestEnv(t)
	entry := addPlantJSON(t, env, "Every 2 days")

	t.Run("recomputes schedule", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/garden/"+entry.ID+"/water", nil)
		req.SetPathValue("id", entry.ID)
		rr := doAs("user-1", env.garden.HandleWater, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var updated model.GardenEntry
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
		assert.True(t, updated.LastWatered.After(entry.LastWatered) || updated.LastWatered.Equal(entry.LastWatered))
		wantNext := updated.LastWatered.Add(2 * 24 * time.Hour)
		assert.True(t, updated.NextWatering.Equal(wantNext),
			"NextWatering = %v, want %v", updated.NextWatering, wantNext)
	})

	t.Run("someone else's plant", func(t *testing.T) {
		require.NoError(t, env.db.CreateUser(context.Background(), &model.User{ID: "user-2", Email: "b@example.com"}))

		req := httptest.NewRequest(http.MethodPost, "/api/garden/"+entry.ID+"/water", nil)
		req.SetPathValue("id", entry.ID)
		rr := doAs("user-2", env.garden.HandleWater, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown plant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/garden/nope/water", nil)
		req.SetPathValue("id", "nope")
		rr := doAs("user-1", env.garden.HandleWater, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestGardenHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	entry := addPlantJSON(t, env, "Every 2 days")

	req := httptest.NewRequest(http.MethodDelete, "/api/garden/"+entry.ID, nil)
	req.SetPathValue("id", entry.ID)
	rr := doAs("user-1", env.garden.HandleDelete, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Gone from subsequent lists.
	listReq := httptest.NewRequest(http.MethodGet, "/api/garden", nil)
	listRR := doAs("user-1", env.garden.HandleList, listReq)

	var entries []model.GardenEntry
	require.NoError(t, json.NewDecoder(listRR.Body).Decode(&entries))
	assert.Empty(t, entries)
}
