package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ritmo-app/ritmo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
)

type FieldHandler struct {
	svc *services.FieldService
}

func NewFieldHandler(svc *services.FieldService) *FieldHandler {
	return &FieldHandler{
		svc: svc,
	}
}

type createFieldRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

type updateFieldRequest struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

func (h *FieldHandler) RegisterRoutes(router *gin.RouterGroup) {
	fields := router.Group("/fields")
	{
		fields.POST("", h.Create)
		fields.GET("", h.List)
		fields.GET("/:id", h.Get)
		fields.PUT("/:id", h.Update)
		fields.DELETE("/:id", h.Delete)
	}
}

func (h *FieldHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateFieldInput{
		UserID:      userID,
		Name:        req.Name,
		Type:        domain.FieldType(req.Type),
		Unit:        req.Unit,
		Description: req.Description,
	}

	field, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrFieldNameEmpty) || errors.Is(err, domain.ErrInvalidFieldType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, field)
}

func (h *FieldHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	fields, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, fields)
}

func (h *FieldHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	field, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrFieldNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tracking field not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, field)
}

func (h *FieldHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field, err := h.svc.Update(c.Request.Context(), c.Param("id"), userID, req.Name, req.Unit, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrFieldNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tracking field not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, field)
}

func (h *FieldHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrFieldNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tracking field not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
