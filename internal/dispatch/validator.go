package dispatch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/edusarathi/content-api/internal/models"
)

// qualityIndicators are the pedagogical/structural terms a usable completion
// is expected to contain. The gate is domain-agnostic on purpose: it rejects
// empty or off-topic completions, not badly structured documents.
var qualityIndicators = []string{
	"learning", "objective", "ncert", "curriculum", "student",
	"assessment", "activity", "explanation", "example", "understanding",
}

const (
	minContentLength  = 50
	minIndicatorCount = 2
)

// Validator is the cheap deterministic quality gate applied to every
// successful backend envelope before it is accepted.
type Validator struct{}

// NewValidator creates the standard response validator.
func NewValidator() *Validator { return &Validator{} }

// Check rejects completions that are too short or carry fewer than two
// educational quality indicators.
func (v *Validator) Check(content string) models.ValidationVerdict {
	trimmed := strings.TrimSpace(content)
	if n := utf8.RuneCountInString(trimmed); n < minContentLength {
		return models.ValidationVerdict{
			Passed: false,
			Reason: fmt.Sprintf("content too short: %d chars (min %d)", n, minContentLength),
		}
	}

	lower := strings.ToLower(content)
	count := 0
	for _, term := range qualityIndicators {
		if strings.Contains(lower, term) {
			count++
		}
	}
	if count < minIndicatorCount {
		return models.ValidationVerdict{
			Passed: false,
			Reason: fmt.Sprintf("only %d quality indicators found (min %d)", count, minIndicatorCount),
		}
	}

	return models.ValidationVerdict{Passed: true}
}
