package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
)

type SyncHandler struct {
	svc *services.SyncService
}

func NewSyncHandler(svc *services.SyncService) *SyncHandler {
	return &SyncHandler{
		svc: svc,
	}
}

type pushRequest struct {
	Habits    []*domain.Habit         `json:"habits"`
	Days      []*domain.DayRecord     `json:"days"`
	Events    []*domain.Event         `json:"events"`
	Fields    []*domain.TrackingField `json:"fields"`
	Templates []*domain.Template      `json:"templates"`
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/sync")
	{
		sync.GET("", h.Pull)
		sync.POST("", h.Push)
		sync.GET("/snapshot", h.Snapshot)
	}
}

// Pull godoc
// @Summary  Fetch all records changed since the client's last sync
// @Tags     sync
// @Produce  json
// @Param    since query int false "epoch milliseconds of the last pull, 0 for a full sync"
// @Success  200 {object} services.Delta
// @Security BearerAuth
// @Router   /sync [get]
func (h *SyncHandler) Pull(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var since time.Time
	if sinceStr := c.Query("since"); sinceStr != "" {
		millis, err := strconv.ParseInt(sinceStr, 10, 64)
		if err != nil || millis < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since, expected epoch milliseconds"})
			return
		}
		since = time.UnixMilli(millis).UTC()
	}

	delta, err := h.svc.Pull(c.Request.Context(), userID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, delta)
}

// Snapshot godoc
// @Summary  Load the full aggregate for a first-run bootstrap
// @Tags     sync
// @Produce  json
// @Success  200 {object} domain.Snapshot
// @Security BearerAuth
// @Router   /sync/snapshot [get]
func (h *SyncHandler) Snapshot(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Push godoc
// @Summary  Apply client-side changes, last write wins
// @Tags     sync
// @Accept   json
// @Produce  json
// @Param    request body pushRequest true "client records"
// @Success  200 {object} services.PushResult
// @Security BearerAuth
// @Router   /sync [post]
func (h *SyncHandler) Push(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	input := services.PushInput{
		UserID:    userID,
		Habits:    req.Habits,
		Days:      req.Days,
		Events:    req.Events,
		Fields:    req.Fields,
		Templates: req.Templates,
	}

	result, err := h.svc.Push(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
