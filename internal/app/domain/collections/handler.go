package collections

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
		logger:  logger.With(zap.String("handler", "CollectionsHandler")),
	}
}

// List handles GET /api/collections.
func (h *Handler) List(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	collections, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "listing collections failed")
		return
	}
	c.JSON(http.StatusOK, collections)
}

// Get handles GET /api/collections/:id, returning the collection with its
// itinerary inlined.
func (h *Handler) Get(c *gin.Context) {
	collectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection id"})
		return
	}

	detail, err := h.service.Get(c.Request.Context(), middleware.GetUserIDFromContext(c), collectionID)
	if err != nil {
		h.respondError(c, err, "collection fetch failed")
		return
	}
	c.JSON(http.StatusOK, detail)
}

type createRequest struct {
	Name      string  `json:"name" binding:"required"`
	IsPublic  bool    `json:"is_public"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Create handles POST /api/collections.
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, &models.Collection{
		Name:      req.Name,
		IsPublic:  req.IsPublic,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.respondError(c, err, "collection create failed")
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateDatesRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// UpdateDates handles PATCH /api/collections/:id/dates. Shrinking the range
// purges out-of-range itinerary items and day metadata.
func (h *Handler) UpdateDates(c *gin.Context) {
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

	var req updateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	start, err := parseDatePtr(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := parseDatePtr(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	updated, err := h.service.UpdateDates(c.Request.Context(), userID, collectionID, start, end)
	if err != nil {
		h.respondError(c, err, "date update failed")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteLocation handles DELETE /api/locations/:id.
func (h *Handler) DeleteLocation(c *gin.Context) {
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location id"})
		return
	}
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.service.DeleteLocation(c.Request.Context(), userID, locationID); err != nil {
		h.respondError(c, err, "location delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this resource"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
