package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type buildUpRequest struct {
	StartValue       int    `json:"start_value"`
	GoalValue        int    `json:"goal_value"`
	IncrementValue   int    `json:"increment_value"`
	DaysForIncrement int    `json:"days_for_increment"`
	Unit             string `json:"unit"`
}

func (r *buildUpRequest) toConfig() *domain.BuildUpConfig {
	if r == nil {
		return nil
	}
	return &domain.BuildUpConfig{
		StartValue:       r.StartValue,
		GoalValue:        r.GoalValue,
		IncrementValue:   r.IncrementValue,
		DaysForIncrement: r.DaysForIncrement,
		Unit:             r.Unit,
	}
}

type createHabitRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
	BuildUp     *buildUpRequest `json:"build_up"`
}

type updateHabitRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Color       string          `json:"color"`
	SortOrder   *int            `json:"sort_order"`
	BuildUp     *buildUpRequest `json:"build_up"`
	Version     int             `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/sync", h.Sync)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.POST("/:id/archive", h.Archive)
		habits.POST("/:id/restore", h.Restore)
		habits.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary  Create a habit
// @Tags     habits
// @Accept   json
// @Produce  json
// @Param    request body createHabitRequest true "habit data"
// @Success  201 {object} domain.Habit
// @Security BearerAuth
// @Router   /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateHabitInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		BuildUp:     req.BuildUp.toConfig(),
	}

	habit, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		if isHabitValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	lastSyncStr := c.Query("last_sync")
	var lastSync time.Time
	var err error

	if lastSyncStr != "" {
		lastSync, err = time.Parse(time.RFC3339, lastSyncStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid last_sync format, use RFC3339"})
			return
		}
	}

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": time.Now().UTC(),
	})
}

func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	id := c.Param("id")

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateHabitInput{
		ID:          id,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		BuildUp:     req.BuildUp.toConfig(),
		Version:     req.Version,
	}

	habit, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrHabitConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "version conflict",
				"message": "Data has been modified elsewhere. Please sync.",
			})
			return
		}
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		if errors.Is(err, domain.ErrHabitArchived) || isHabitValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Archive(c *gin.Context) {
	h.setArchived(c, h.svc.Archive)
}

func (h *HabitHandler) Restore(c *gin.Context) {
	h.setArchived(c, h.svc.Restore)
}

func (h *HabitHandler) setArchived(c *gin.Context, op func(ctx context.Context, id, userID string) (*domain.Habit, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	habit, err := op(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	id := c.Param("id")

	err := h.svc.Delete(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func isHabitValidationError(err error) bool {
	return errors.Is(err, domain.ErrHabitNameEmpty) ||
		errors.Is(err, domain.ErrHabitNameTooLong) ||
		errors.Is(err, domain.ErrHabitDescTooLong) ||
		errors.Is(err, domain.ErrInvalidColor) ||
		errors.Is(err, domain.ErrBuildUpStartValue) ||
		errors.Is(err, domain.ErrBuildUpGoalValue) ||
		errors.Is(err, domain.ErrBuildUpIncrementValue) ||
		errors.Is(err, domain.ErrBuildUpDaysForIncrement) ||
		errors.Is(err, domain.ErrBuildUpGoalNotAboveStart)
}
