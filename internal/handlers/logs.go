package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/content"
	"github.com/edusarathi/content-api/internal/middleware"
)

// LogsHandler exposes recent generation logs for operational review
type LogsHandler struct {
	service *content.Service
	logger  *zap.Logger
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(service *content.Service, logger *zap.Logger) *LogsHandler {
	return &LogsHandler{service: service, logger: logger}
}

// List handles GET /api/v1/logs
func (h *LogsHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			middleware.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	logs, err := h.service.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch generation logs", zap.Error(err))
		middleware.RespondError(c, http.StatusInternalServerError, middleware.ErrCodeDatabaseError, "failed to fetch generation logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
