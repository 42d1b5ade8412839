package classify

import (
	"strings"

	"github.com/edusarathi/content-api/internal/models"
)

// domainKeywords maps each content domain to the phrases that indicate it.
// Matching is case-insensitive substring search over the request text.
var domainKeywords = map[models.ContentDomain][]string{
	models.DomainQuiz:        {"quiz", "question", "mcq", "multiple choice"},
	models.DomainCurriculum:  {"curriculum", "syllabus", "course", "program"},
	models.DomainMindmap:     {"mindmap", "mind map", "concept map", "visual"},
	models.DomainSlideDeck:   {"slide", "presentation", "ppt", "powerpoint"},
	models.DomainLecturePlan: {"lecture", "lesson", "teaching plan"},
	models.DomainAssessment:  {"assessment", "exam", "evaluation", "grading", "test"},
}

// priority is the fixed tie-break order when text matches multiple domains.
// A prompt mentioning both "quiz" and "curriculum" is a quiz.
var priority = []models.ContentDomain{
	models.DomainQuiz,
	models.DomainCurriculum,
	models.DomainMindmap,
	models.DomainSlideDeck,
	models.DomainLecturePlan,
	models.DomainAssessment,
}

// Domain classifies free text into a content domain. It is the single
// classification rule shared by candidate selection and fallback synthesis.
func Domain(text string) models.ContentDomain {
	lower := strings.ToLower(text)
	for _, d := range priority {
		for _, kw := range domainKeywords[d] {
			if strings.Contains(lower, kw) {
				return d
			}
		}
	}
	return models.DomainGeneral
}

// FromMessages classifies a message list by its first user message, falling
// back to the concatenation of all message content when none exists.
func FromMessages(messages []models.Message) models.ContentDomain {
	for _, m := range messages {
		if m.Role == models.RoleUser {
			return Domain(m.Content)
		}
	}
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString(" ")
	}
	return Domain(b.String())
}
