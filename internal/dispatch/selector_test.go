package dispatch

import (
	"testing"

	"github.com/edusarathi/content-api/internal/models"
)

func testSelectorConfig() SelectorConfig {
	return SelectorConfig{
		PremiumModels: []string{
			"anthropic/claude-3.5-sonnet",
			"openai/gpt-4-turbo",
			"meta-llama/llama-3.1-70b-instruct",
		},
		PremiumAttempts: 2,
		FreeModels: []string{
			"deepseek/deepseek-chat-v3.1:free",
			"meta-llama/llama-3.2-3b-instruct:free",
			"google/gemma-2-9b-it:free",
		},
		DomainPreferred: map[models.ContentDomain]string{
			models.DomainQuiz: "google/gemma-2-9b-it:free",
		},
	}
}

func TestCandidatesPremiumFirst(t *testing.T) {
	s := NewSelector(testSelectorConfig())
	candidates := s.Candidates(models.DomainGeneral, "")

	if len(candidates) != 5 {
		t.Fatalf("Expected 5 candidates (2 premium + 3 free), got %d", len(candidates))
	}

	if candidates[0].Identifier != "anthropic/claude-3.5-sonnet" || candidates[0].Tier != models.TierPremium {
		t.Errorf("Expected first premium candidate, got %+v", candidates[0])
	}
	if candidates[1].Identifier != "openai/gpt-4-turbo" {
		t.Errorf("Expected second premium candidate, got %+v", candidates[1])
	}
	// The third premium model is beyond the attempt budget.
	for _, c := range candidates {
		if c.Identifier == "meta-llama/llama-3.1-70b-instruct" {
			t.Errorf("Premium model beyond attempt budget should not appear: %+v", c)
		}
	}
	if candidates[2].Tier != models.TierFree {
		t.Errorf("Expected free tier after premium attempts, got %+v", candidates[2])
	}
}

func TestCandidatesDomainPreferredHoisted(t *testing.T) {
	s := NewSelector(testSelectorConfig())
	candidates := s.Candidates(models.DomainQuiz, "")

	if len(candidates) != 5 {
		t.Fatalf("Expected 5 candidates, got %d", len(candidates))
	}

	// First free-tier slot carries the domain preference.
	if candidates[2].Identifier != "google/gemma-2-9b-it:free" {
		t.Errorf("Expected preferred model first in free tier, got %+v", candidates[2])
	}

	// The preferred model appears exactly once.
	seen := 0
	for _, c := range candidates {
		if c.Identifier == "google/gemma-2-9b-it:free" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("Expected preferred model exactly once, got %d occurrences", seen)
	}
}

func TestCandidatesOverrideShortCircuits(t *testing.T) {
	s := NewSelector(testSelectorConfig())
	candidates := s.Candidates(models.DomainQuiz, "custom/model")

	if len(candidates) != 1 {
		t.Fatalf("Expected exactly one candidate with override, got %d", len(candidates))
	}
	if candidates[0].Identifier != "custom/model" {
		t.Errorf("Expected override candidate, got %+v", candidates[0])
	}
}

func TestCandidatesAttemptBudgetClamped(t *testing.T) {
	cfg := testSelectorConfig()
	cfg.PremiumAttempts = 99
	s := NewSelector(cfg)

	candidates := s.Candidates(models.DomainGeneral, "")
	if len(candidates) != 6 {
		t.Fatalf("Expected all 3 premium + 3 free, got %d", len(candidates))
	}
}

func TestCandidatesEmptyConfig(t *testing.T) {
	s := NewSelector(SelectorConfig{})
	candidates := s.Candidates(models.DomainGeneral, "")
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates from empty config, got %d", len(candidates))
	}
}
