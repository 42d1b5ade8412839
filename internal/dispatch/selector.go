package dispatch

import (
	"github.com/edusarathi/content-api/internal/models"
)

// SelectorConfig is the data that drives candidate ordering. Domain
// preferences are configuration, not branching logic, so the cascade can be
// retuned without a rebuild.
type SelectorConfig struct {
	// PremiumModels in preference order; only the first PremiumAttempts are
	// tried before falling through to the free tier.
	PremiumModels   []string
	PremiumAttempts int

	// FreeModels in preference order.
	FreeModels []string

	// DomainPreferred substitutes a model as the first free-tier candidate
	// for a given domain.
	DomainPreferred map[models.ContentDomain]string
}

// Selector builds the ordered candidate cascade for one request.
type Selector struct {
	cfg SelectorConfig
}

// NewSelector creates a selector from static configuration.
func NewSelector(cfg SelectorConfig) *Selector {
	if cfg.PremiumAttempts <= 0 || cfg.PremiumAttempts > len(cfg.PremiumModels) {
		cfg.PremiumAttempts = len(cfg.PremiumModels)
	}
	return &Selector{cfg: cfg}
}

// Candidates returns the ordered list of models to attempt. An explicit
// override short-circuits all tiering and yields exactly that one candidate.
func (s *Selector) Candidates(domain models.ContentDomain, override string) []models.ModelCandidate {
	if override != "" {
		return []models.ModelCandidate{{Identifier: override, Tier: models.TierPremium}}
	}

	out := make([]models.ModelCandidate, 0, s.cfg.PremiumAttempts+len(s.cfg.FreeModels))
	for _, id := range s.cfg.PremiumModels[:s.cfg.PremiumAttempts] {
		out = append(out, models.ModelCandidate{Identifier: id, Tier: models.TierPremium})
	}

	free := s.cfg.FreeModels
	if preferred, ok := s.cfg.DomainPreferred[domain]; ok && preferred != "" {
		out = append(out, models.ModelCandidate{Identifier: preferred, Tier: models.TierFree})
		for _, id := range free {
			if id == preferred {
				continue
			}
			out = append(out, models.ModelCandidate{Identifier: id, Tier: models.TierFree})
		}
		return out
	}

	for _, id := range free {
		out = append(out, models.ModelCandidate{Identifier: id, Tier: models.TierFree})
	}
	return out
}
