package fallback

import (
	"regexp"
	"strconv"
	"strings"
)

// Documented defaults used when a parameter cannot be extracted from the
// prompt text.
const (
	DefaultSubject = "Physics"
	DefaultTopic   = "Motion and Force"
	DefaultGrade   = "11"
)

// knownSubjects is scanned in order; the first match wins, so compound
// names come before their substrings ("computer science" before "science").
var knownSubjects = []string{
	"physics", "chemistry", "biology", "mathematics", "maths",
	"computer science", "science", "english", "hindi", "history",
	"geography", "economics",
}

var (
	gradePattern = regexp.MustCompile(`(?i)\b(?:class|grade)\s*[-: ]?\s*(\d{1,2})\b`)
	topicPattern = regexp.MustCompile(`(?i)\b(?:on|about|covering)\s+([A-Za-z][A-Za-z0-9 '&,-]{2,60}?)(?:\s+for\b|\s+with\b|\s+in\b|[.?!;\n]|$)`)
)

// PromptParams are the parameters extractable from free prompt text.
type PromptParams struct {
	Subject string
	Topic   string
	Grade   string
}

// ExtractParams pulls subject, topic and grade from prompt text by substring
// search, degrading field by field to the documented defaults. It never
// fails.
func ExtractParams(text string) PromptParams {
	params := PromptParams{
		Subject: DefaultSubject,
		Topic:   DefaultTopic,
		Grade:   DefaultGrade,
	}

	lower := strings.ToLower(text)
	for _, s := range knownSubjects {
		if strings.Contains(lower, s) {
			params.Subject = titleCase(s)
			break
		}
	}

	if m := gradePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 12 {
			params.Grade = strconv.Itoa(n)
		}
	}

	if m := topicPattern.FindStringSubmatch(text); m != nil {
		topic := strings.TrimSpace(m[1])
		// Guard against capturing a bare subject or grade reference.
		if topic != "" && !strings.EqualFold(topic, params.Subject) {
			params.Topic = titleCase(topic)
		}
	}

	return params
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		// Connective words stay lowercase except at the start.
		if i > 0 && (w == "and" || w == "of" || w == "in" || w == "the") {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
