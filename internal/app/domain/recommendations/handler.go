package recommendations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With(zap.String("handler", "RecommendationsHandler")),
	}
}

// Nearby handles GET /api/recommendations?lat=&lon=&radius=&category=.
func (h *Handler) Nearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon must be a number"})
		return
	}
	radius := 0.0
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be a number"})
			return
		}
	}
	category := c.DefaultQuery("category", "tourism")

	recs, err := h.service.Nearby(c.Request.Context(), lat, lon, radius, category)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recommendation providers are unavailable"})
	default:
		h.logger.Error("recommendations lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendations lookup failed"})
	}
}
