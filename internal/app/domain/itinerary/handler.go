package itinerary

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
	"github.com/imdeafyo/AdventureLog/internal/pkg/middleware"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With(zap.String("handler", "ItineraryHandler")),
	}
}

// AutoGenerate handles POST /api/collections/:id/itinerary/auto-generate.
func (h *Handler) AutoGenerate(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection id"})
		return
	}
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	items, err := h.service.AutoGenerate(c.Request.Context(), userID, collectionID)
	if err != nil {
		h.respondError(c, err, "auto-generate failed")
		return
	}
	c.JSON(http.StatusCreated, items)
}

// GetItinerary handles GET /api/collections/:id/itinerary.
func (h *Handler) GetItinerary(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection id"})
		return
	}

	itinerary, err := h.service.GetItinerary(c.Request.Context(), middleware.GetUserIDFromContext(c), collectionID)
	if err != nil {
		h.respondError(c, err, "itinerary fetch failed")
		return
	}
	c.JSON(http.StatusOK, itinerary)
}

// CreateItem handles POST /api/itinerary/items.
func (h *Handler) CreateItem(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondError(c, err, "item create failed")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Reorder handles PATCH /api/itinerary/items/reorder with a JSON array of
// per-item updates.
func (h *Handler) Reorder(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var updates []models.ItemUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	items, err := h.service.Reorder(c.Request.Context(), userID, updates)
	if err != nil {
		h.respondError(c, err, "reorder failed")
		return
	}
	c.JSON(http.StatusOK, items)
}

// DeleteItem handles DELETE /api/itinerary/items/:id. The preserve_visits
// query flag keeps the underlying visit when a dated location slot is
// removed.
func (h *Handler) DeleteItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	preserve := c.Query("preserve_visits") == "true"
	if err := h.service.DeleteItem(c.Request.Context(), userID, itemID, preserve); err != nil {
		h.respondError(c, err, "item delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

type dayRequest struct {
	Date        string `json:"date" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpsertDay handles PUT /api/collections/:id/itinerary/days.
func (h *Handler) UpsertDay(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection id"})
		return
	}
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	day, err := h.service.UpsertDay(c.Request.Context(), userID, &models.ItineraryDay{
		CollectionID: collectionID,
		Date:         date,
		Name:         req.Name,
		Description:  req.Description,
	})
	if err != nil {
		h.respondError(c, err, "day upsert failed")
		return
	}
	c.JSON(http.StatusOK, day)
}

// DeleteDay handles DELETE /api/collections/:id/itinerary/days/:date.
func (h *Handler) DeleteDay(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection id"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.service.DeleteDay(c.Request.Context(), userID, collectionID, date); err != nil {
		h.respondError(c, err, "day delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this collection"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
