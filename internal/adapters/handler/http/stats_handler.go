package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/calendar", h.GetCalendar)
		stats.GET("/weekly", h.GetWeeklyStats)
		stats.GET("/habits/:id/streaks", h.GetStreaks)
	}
}

// Max 1 year per query.
const maxStatsRangeDays = 366

func (h *StatsHandler) parseRange(c *gin.Context, defaultDays int) (time.Time, time.Time, bool) {
	endStr := c.Query("end_date")
	startStr := c.Query("start_date")

	var start, end time.Time
	var err error

	if endStr == "" {
		end = time.Now().UTC()
	} else {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return start, end, false
		}
	}

	if startStr == "" {
		start = end.AddDate(0, 0, -defaultDays+1)
	} else {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return start, end, false
		}
	}

	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return start, end, false
	}

	if end.Sub(start).Hours()/24 > maxStatsRangeDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return start, end, false
	}

	return start, end, true
}

// GetCalendar godoc
// @Summary  Per-day completion status over a date range
// @Tags     stats
// @Produce  json
// @Param    start_date query string false "range start (YYYY-MM-DD)"
// @Param    end_date   query string false "range end (YYYY-MM-DD), defaults to today"
// @Success  200 {object} services.CalendarStats
// @Security BearerAuth
// @Router   /stats/calendar [get]
func (h *StatsHandler) GetCalendar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	start, end, ok := h.parseRange(c, 31)
	if !ok {
		return
	}

	calendar, err := h.svc.GetCalendar(c.Request.Context(), userID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, calendar)
}

func (h *StatsHandler) GetWeeklyStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	start, end, ok := h.parseRange(c, 7)
	if !ok {
		return
	}

	stats, err := h.svc.GetRangeStats(c.Request.Context(), userID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetStreaks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	streaks, err := h.svc.GetStreaks(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve statistics"})
		return
	}

	c.JSON(http.StatusOK, streaks)
}
