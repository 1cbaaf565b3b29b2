package worldtravel

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/pkg/middleware"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With(zap.String("handler", "WorldTravelHandler")),
	}
}

// SyncVisited handles POST /api/visited/sync.
func (h *Handler) SyncVisited(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	result, err := h.service.SyncVisited(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("visited sync failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync visited places"})
		return
	}

	c.JSON(http.StatusOK, result)
}
