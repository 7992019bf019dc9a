package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
)

type EventHandler struct {
	svc *services.EventService
}

func NewEventHandler(svc *services.EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

type createEventRequest struct {
	Title           string             `json:"title" binding:"required"`
	Description     string             `json:"description"`
	Date            string             `json:"date" binding:"required"`
	StartTime       string             `json:"start_time" binding:"required"`
	DurationMinutes int                `json:"duration_minutes" binding:"required"`
	Recurrence      *domain.Recurrence `json:"recurrence"`
}

type updateEventRequest struct {
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Date            string             `json:"date"`
	StartTime       string             `json:"start_time"`
	DurationMinutes int                `json:"duration_minutes"`
	Recurrence      *domain.Recurrence `json:"recurrence"`
	Version         int                `json:"version"`
}

type detachOccurrenceRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *EventHandler) RegisterRoutes(router *gin.RouterGroup) {
	events := router.Group("/events")
	{
		events.POST("", h.Create)
		events.GET("", h.List)
		events.GET("/occurrences", h.Occurrences)
		events.GET("/sync", h.Sync)
		events.GET("/:id", h.Get)
		events.PUT("/:id", h.Update)
		events.POST("/:id/detach", h.Detach)
		events.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary  Create an event or a recurring series
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    request body createEventRequest true "event data"
// @Success  201 {object} domain.Event
// @Security BearerAuth
// @Router   /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateEventInput{
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Recurrence:      req.Recurrence,
	}

	event, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		if isEventValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	events, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	event, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// Occurrences godoc
// @Summary  Expand events into concrete calendar occurrences for a range
// @Tags     events
// @Produce  json
// @Param    from query string true "range start (YYYY-MM-DD)"
// @Param    to   query string true "range end (YYYY-MM-DD)"
// @Success  200 {array} services.Occurrence
// @Security BearerAuth
// @Router   /events/occurrences [get]
func (h *EventHandler) Occurrences(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if _, err := dateutil.ParseDay(from); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
		return
	}
	if _, err := dateutil.ParseDay(to); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
		return
	}
	if from > to {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from cannot be after to"})
		return
	}

	occurrences, err := h.svc.Occurrences(c.Request.Context(), userID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, occurrences)
}

func (h *EventHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateEventInput{
		ID:              c.Param("id"),
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Recurrence:      req.Recurrence,
		Version:         req.Version,
	}

	event, err := h.svc.Update(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrEventConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "version conflict",
				"message": "data has been modified elsewhere, please sync",
			})
			return
		}
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if isEventValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// Detach godoc
// @Summary  Carve a single occurrence out of a recurring series
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    id      path string true "series event id"
// @Param    request body detachOccurrenceRequest true "occurrence date"
// @Success  201 {object} domain.Event
// @Security BearerAuth
// @Router   /events/{id}/detach [post]
func (h *EventHandler) Detach(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req detachOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	child, err := h.svc.DetachOccurrence(c.Request.Context(), c.Param("id"), userID, req.Date)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no occurrence on that date"})
			return
		}
		if errors.Is(err, domain.ErrEventNotRecurring) || errors.Is(err, domain.ErrEventInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, child)
}

func (h *EventHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) Sync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	sinceStr := c.Query("since")
	var since time.Time

	if sinceStr != "" {
		var err error
		since, err = time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format (use RFC3339)"})
			return
		}
	}

	changes, err := h.svc.GetDelta(c.Request.Context(), userID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   changes,
		"timestamp": time.Now().UTC(),
	})
}

func isEventValidationError(err error) bool {
	return errors.Is(err, domain.ErrEventTitleEmpty) ||
		errors.Is(err, domain.ErrEventInvalidDate) ||
		errors.Is(err, domain.ErrEventInvalidStartTime) ||
		errors.Is(err, domain.ErrEventInvalidDuration) ||
		errors.Is(err, domain.ErrRecurrenceInterval) ||
		errors.Is(err, domain.ErrRecurrenceType) ||
		errors.Is(err, domain.ErrRecurrenceWeekdays) ||
		errors.Is(err, domain.ErrRecurrenceMonthlyTarget) ||
		errors.Is(err, domain.ErrRecurrenceEndConditions) ||
		errors.Is(err, domain.ErrRecurrenceOccurrences)
}
