package geocoding

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
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
		logger:  logger.With(zap.String("handler", "GeocodingHandler")),
	}
}

// ReverseGeocode handles GET /api/geocode/reverse?lat=..&lon=..
func (h *Handler) ReverseGeocode(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	place, err := h.service.ReverseGeocode(c.Request.Context(), lat, lon, userID)
	if err != nil {
		h.respondError(c, err, "reverse geocode failed")
		return
	}
	c.JSON(http.StatusOK, place)
}

// Search handles GET /api/geocode/search?query=..
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	results, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err, "place search failed")
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching region found"})
	case errors.Is(err, models.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "geocoding providers are unavailable"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
