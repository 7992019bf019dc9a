package http_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"

	adapterHTTP "github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http"
	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/repository"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/workers"
)

// testAuth replaces the JWT middleware: the X-User-ID header becomes the
// authenticated user.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-User-ID")
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(middleware.ContextUserIDKey, id)
		c.Next()
	}
}

type testEnv struct {
	router    *gin.Engine
	habits    *repository.InMemoryHabitRepository
	days      *repository.InMemoryDayRepository
	events    *repository.InMemoryEventRepository
	fields    *repository.InMemoryFieldRepository
	templates *repository.InMemoryTemplateRepository
	users     *repository.InMemoryUserRepository
}

func setupEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		habits:    repository.NewInMemoryHabitRepository(),
		days:      repository.NewInMemoryDayRepository(),
		events:    repository.NewInMemoryEventRepository(),
		fields:    repository.NewInMemoryFieldRepository(),
		templates: repository.NewInMemoryTemplateRepository(),
		users:     repository.NewInMemoryUserRepository(),
	}

	worker := workers.NewStreakWorker(env.habits, env.days)

	authService := services.NewAuthService(env.users)
	tokenService := services.NewTokenService("handler-test-secret", "ritmo-test", time.Hour, env.users)
	habitService := services.NewHabitService(env.habits)
	dayService := services.NewDayService(env.days, env.habits, env.fields, worker)
	eventService := services.NewEventService(env.events)
	fieldService := services.NewFieldService(env.fields)
	templateService := services.NewTemplateService(env.templates)
	statsService := services.NewStatsService(env.habits, env.days)
	syncService := services.NewSyncService(env.habits, env.days, env.events, env.fields, env.templates)

	r := gin.New()
	api := r.Group("/api/v1")

	adapterHTTP.NewAuthHandler(authService, tokenService).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(testAuth())
	{
		adapterHTTP.NewHabitHandler(habitService).RegisterRoutes(protected)
		adapterHTTP.NewDayHandler(dayService).RegisterRoutes(protected)
		adapterHTTP.NewEventHandler(eventService).RegisterRoutes(protected)
		adapterHTTP.NewFieldHandler(fieldService).RegisterRoutes(protected)
		adapterHTTP.NewTemplateHandler(templateService).RegisterRoutes(protected)
		adapterHTTP.NewStatsHandler(statsService).RegisterRoutes(protected)
		adapterHTTP.NewSyncHandler(syncService).RegisterRoutes(protected)
	}

	env.router = r
	return env
}

func (e *testEnv) do(method, path, userID, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
