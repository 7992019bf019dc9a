package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
)

type DayHandler struct {
	svc *services.DayService
}

func NewDayHandler(svc *services.DayService) *DayHandler {
	return &DayHandler{
		svc: svc,
	}
}

type toggleCompletionRequest struct {
	Done bool `json:"done"`
}

type setValueRequest struct {
	Value string `json:"value"`
}

func (h *DayHandler) RegisterRoutes(router *gin.RouterGroup) {
	days := router.Group("/days")
	{
		days.GET("", h.ListByRange)
		days.GET("/sync", h.Sync)
		days.GET("/:date", h.GetByDate)
		days.PUT("/:date/habits/:habitID", h.ToggleCompletion)
		days.PUT("/:date/fields/:fieldID", h.SetValue)
	}
}

// ToggleCompletion godoc
// @Summary  Mark a habit done or not done for a day
// @Tags     days
// @Accept   json
// @Produce  json
// @Param    date    path string true "day (YYYY-MM-DD)"
// @Param    habitID path string true "habit id"
// @Param    request body toggleCompletionRequest true "completion flag"
// @Success  200 {object} services.ToggleResult
// @Security BearerAuth
// @Router   /days/{date}/habits/{habitID} [put]
func (h *DayHandler) ToggleCompletion(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	date := c.Param("date")
	if _, err := dateutil.ParseDay(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	var req toggleCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.svc.ToggleCompletion(c.Request.Context(), userID, date, c.Param("habitID"), req.Done)
	if err != nil {
		handleDayError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetValue godoc
// @Summary  Record a tracking-field value for a day
// @Tags     days
// @Accept   json
// @Produce  json
// @Param    date    path string true "day (YYYY-MM-DD)"
// @Param    fieldID path string true "tracking field id"
// @Param    request body setValueRequest true "raw value, empty string clears"
// @Success  200 {object} domain.DayRecord
// @Security BearerAuth
// @Router   /days/{date}/fields/{fieldID} [put]
func (h *DayHandler) SetValue(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	date := c.Param("date")
	if _, err := dateutil.ParseDay(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	var req setValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	record, err := h.svc.SetValue(c.Request.Context(), userID, date, c.Param("fieldID"), req.Value)
	if err != nil {
		handleDayError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *DayHandler) GetByDate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	date := c.Param("date")
	if _, err := dateutil.ParseDay(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	record, err := h.svc.GetByDate(c.Request.Context(), userID, date)
	if err != nil {
		handleDayError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *DayHandler) ListByRange(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	to := dateutil.FormatDay(time.Now().UTC())
	from := dateutil.FormatDay(time.Now().UTC().AddDate(0, 0, -30))

	if v := c.Query("from"); v != "" {
		if _, err := dateutil.ParseDay(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		from = v
	}
	if v := c.Query("to"); v != "" {
		if _, err := dateutil.ParseDay(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		to = v
	}

	records, err := h.svc.ListByRange(c.Request.Context(), userID, from, to)
	if err != nil {
		handleDayError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *DayHandler) Sync(c *gin.Context) {
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
		handleDayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   changes,
		"timestamp": time.Now().UTC(),
	})
}

func handleDayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrDayNotFound) ||
		errors.Is(err, domain.ErrHabitNotFound) ||
		errors.Is(err, domain.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrDayConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "data has been modified elsewhere, please sync",
		})

	case errors.Is(err, domain.ErrDayInFuture) ||
		errors.Is(err, domain.ErrHabitArchived) ||
		errors.Is(err, domain.ErrInvalidTimeValue) ||
		errors.Is(err, domain.ErrInvalidNumber) ||
		errors.Is(err, domain.ErrInvalidBoolean) ||
		errors.Is(err, domain.ErrScaleOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
