package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusarathi/content-api/internal/config"
	"github.com/edusarathi/content-api/internal/fallback"
	"github.com/edusarathi/content-api/internal/models"
)

// ModelsHandler exposes the model catalog used by the cascade
type ModelsHandler struct {
	cfg *config.Config
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(cfg *config.Config) *ModelsHandler {
	return &ModelsHandler{cfg: cfg}
}

// CatalogEntry describes one model in the catalog response
type CatalogEntry struct {
	Identifier string           `json:"identifier"`
	Tier       models.ModelTier `json:"tier"`
}

// List handles GET /api/v1/models
func (h *ModelsHandler) List(c *gin.Context) {
	catalog := make([]CatalogEntry, 0, len(h.cfg.PremiumModels)+len(h.cfg.FreeModels)+1)
	for _, m := range h.cfg.PremiumModels {
		catalog = append(catalog, CatalogEntry{Identifier: m, Tier: models.TierPremium})
	}
	for _, m := range h.cfg.FreeModels {
		catalog = append(catalog, CatalogEntry{Identifier: m, Tier: models.TierFree})
	}

	preferred := make(map[string]string, len(h.cfg.DomainPreferred))
	for domain, model := range h.cfg.DomainPreferred {
		preferred[string(domain)] = model
	}

	c.JSON(http.StatusOK, gin.H{
		"models":           catalog,
		"domain_preferred": preferred,
		"premium_attempts": h.cfg.PremiumAttempts,
		"fallback_model":   fallback.ModelName,
	})
}
