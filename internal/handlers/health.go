package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edusarathi/content-api/internal/database"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db         *database.Postgres
	redis      *database.Redis
	backendURL string
	client     *http.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Postgres, redis *database.Redis, backendURL string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		redis:      redis,
		backendURL: backendURL,
		client:     &http.Client{Timeout: 3 * time.Second},
	}
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "edusarathi-content-api",
		"version": "0.1.0",
	})
}

// DeepHealth returns health status with dependency checks
func (h *HealthHandler) DeepHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deps := make(map[string]string)
	allHealthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			deps["database"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			deps["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			deps["redis"] = "healthy"
		}
	} else {
		deps["redis"] = "not configured"
	}

	if h.backendURL != "" {
		if h.checkBackend(ctx) {
			deps["generation_backend"] = "healthy"
		} else {
			// Backend loss is not fatal: generation degrades to fallback
			// synthesis, so the service stays available.
			deps["generation_backend"] = "unreachable"
		}
	} else {
		deps["generation_backend"] = "not configured"
	}

	status := "healthy"
	code := http.StatusOK
	if !allHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      "edusarathi-content-api",
		"dependencies": deps,
	})
}

// checkBackend probes the backend's model listing, the cheapest
// unauthenticated endpoint it exposes.
func (h *HealthHandler) checkBackend(ctx context.Context) bool {
	url := strings.TrimRight(h.backendURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}
