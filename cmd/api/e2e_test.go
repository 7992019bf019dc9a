package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http"
	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/repository"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/workers"
)

// Full API stack over in-memory repositories: auth, habits, day toggles,
// stats and sync through real routing and JWT middleware.
func setupTestRouter() *gin.Engine {
	habitRepo := repository.NewInMemoryHabitRepository()
	dayRepo := repository.NewInMemoryDayRepository()
	eventRepo := repository.NewInMemoryEventRepository()
	fieldRepo := repository.NewInMemoryFieldRepository()
	templateRepo := repository.NewInMemoryTemplateRepository()
	userRepo := repository.NewInMemoryUserRepository()

	worker := workers.NewStreakWorker(habitRepo, dayRepo)

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService("e2e-secret", "ritmo-e2e", time.Hour, userRepo)
	habitService := services.NewHabitService(habitRepo)
	dayService := services.NewDayService(dayRepo, habitRepo, fieldRepo, worker)
	eventService := services.NewEventService(eventRepo)
	fieldService := services.NewFieldService(fieldRepo)
	templateService := services.NewTemplateService(templateRepo)
	statsService := services.NewStatsService(habitRepo, dayRepo)
	syncService := services.NewSyncService(habitRepo, dayRepo, eventRepo, fieldRepo, templateRepo)

	router := gin.New()
	api := router.Group("/api/v1")

	adapterHTTP.NewAuthHandler(authService, tokenService).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokenService))
	{
		adapterHTTP.NewHabitHandler(habitService).RegisterRoutes(protected)
		adapterHTTP.NewDayHandler(dayService).RegisterRoutes(protected)
		adapterHTTP.NewEventHandler(eventService).RegisterRoutes(protected)
		adapterHTTP.NewFieldHandler(fieldService).RegisterRoutes(protected)
		adapterHTTP.NewTemplateHandler(templateService).RegisterRoutes(protected)
		adapterHTTP.NewStatsHandler(statsService).RegisterRoutes(protected)
		adapterHTTP.NewSyncHandler(syncService).RegisterRoutes(protected)
	}

	return router
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body == "" {
		buf = bytes.NewBuffer(nil)
	} else {
		buf = bytes.NewBufferString(body)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_HabitLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := setupTestRouter()

	var token string
	var habitID string
	today := dateutil.FormatDay(time.Now().UTC())

	t.Run("1. Register", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "",
			`{"email": "runner@example.com", "password": "long-enough-pass", "display_name": "Runner"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("2. Login", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "",
			`{"email": "runner@example.com", "password": "long-enough-pass"}`)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)
		token = resp.Token
	})

	t.Run("3. Auth Error without token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/habits", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("4. Create Habit", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/habits", token,
			`{"name": "Morning Run", "color": "#FF5733"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.ID)
		assert.Equal(t, "Morning Run", resp.Name)
		habitID = resp.ID
	})

	t.Run("5. Validation Error", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/habits", token, `{"color": "#FF5733"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("6. Toggle Completion", func(t *testing.T) {
		require.NotEmpty(t, habitID)

		path := fmt.Sprintf("/api/v1/days/%s/habits/%s", today, habitID)
		w := doJSON(router, http.MethodPut, path, token, `{"done": true}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), habitID)
	})

	t.Run("7. Future Day Rejected", func(t *testing.T) {
		tomorrow := dateutil.FormatDay(time.Now().UTC().AddDate(0, 0, 1))
		path := fmt.Sprintf("/api/v1/days/%s/habits/%s", tomorrow, habitID)
		w := doJSON(router, http.MethodPut, path, token, `{"done": true}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("8. Streak Stats", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/stats/habits/"+habitID+"/streaks", token, "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			CurrentStreak int `json:"current_streak"`
			NextMilestone int `json:"next_milestone"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.CurrentStreak)
		assert.Equal(t, 3, resp.NextMilestone)
	})

	t.Run("9. Sync Pull sees habit and day", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/sync?since=0", token, "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			ServerTime int64             `json:"server_time"`
			Habits     []json.RawMessage `json:"habits"`
			Days       []json.RawMessage `json:"days"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Greater(t, resp.ServerTime, int64(0))
		assert.Len(t, resp.Habits, 1)
		assert.Len(t, resp.Days, 1)
	})

	t.Run("10. Delete Habit", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/api/v1/habits/"+habitID, token, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		list := doJSON(router, http.MethodGet, "/api/v1/habits", token, "")
		assert.Equal(t, http.StatusOK, list.Code)
		assert.NotContains(t, list.Body.String(), habitID)
	})
}
