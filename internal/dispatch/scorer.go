package dispatch

import (
	"strings"
	"unicode/utf8"
)

// scoringTerms earn a small bonus each when present in accepted content.
var scoringTerms = []string{
	"ncert", "curriculum", "assessment", "pedagogical", "learning objective", "rubric",
}

// structuralMarkers indicate the content carries document structure (JSON,
// headings, numbered or lettered sub-items).
var structuralMarkers = []string{"{", "##", "###", "1.", "a)", "i)"}

// Score computes a heuristic confidence in [0,1] for accepted content. It is
// informational only: accept/reject stays with the Validator.
func Score(content string) float64 {
	score := 0.5

	// Length bonuses count characters, not bytes, so multilingual
	// content is scored on the same scale as English.
	switch n := utf8.RuneCountInString(content); {
	case n > 1000:
		score += 0.2
	case n > 500:
		score += 0.1
	}

	lower := strings.ToLower(content)
	for _, term := range scoringTerms {
		if strings.Contains(lower, term) {
			score += 0.05
		}
	}

	for _, marker := range structuralMarkers {
		if strings.Contains(content, marker) {
			score += 0.1
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
