package fallback

import (
	"embed"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/classify"
	"github.com/edusarathi/content-api/internal/models"
)

// Templates are data, not code: one JSON structural definition per domain,
// embedded at build time and validated at startup.
//
//go:embed templates/*.json
var templateFS embed.FS

// ModelName tags every synthesized result so callers and monitoring can tell
// degraded output from a genuine completion.
const ModelName = "fallback"

// QualityScore is the fixed confidence attached to synthesized content. It
// is deliberately below a good live completion; IsFallback carries the
// degradation signal.
const QualityScore = 0.6

// syntheticUsage approximates the token accounting a live backend would
// report for a templated document.
var syntheticUsage = models.UsageStats{
	PromptTokens:     100,
	CompletionTokens: 500,
	TotalTokens:      600,
}

// Synthesizer deterministically produces a complete, schema-correct document
// for any request without a network call. It is pure and stateless after
// construction.
type Synthesizer struct {
	templates map[models.ContentDomain]string
	logger    *zap.Logger
}

// domainTemplates maps each domain to its embedded asset.
var domainTemplates = map[models.ContentDomain]string{
	models.DomainQuiz:        "templates/quiz.json",
	models.DomainCurriculum:  "templates/curriculum.json",
	models.DomainMindmap:     "templates/mindmap.json",
	models.DomainSlideDeck:   "templates/slide_deck.json",
	models.DomainLecturePlan: "templates/lecture_plan.json",
	models.DomainAssessment:  "templates/assessment.json",
	models.DomainGeneral:     "templates/general.json",
}

// NewSynthesizer loads and verifies every domain template. A missing or
// empty asset is a deployment bug and fails construction.
func NewSynthesizer(logger *zap.Logger) (*Synthesizer, error) {
	templates := make(map[models.ContentDomain]string, len(domainTemplates))
	for domain, path := range domainTemplates {
		raw, err := templateFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load fallback template %s: %w", path, err)
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("fallback template %s is empty", path)
		}
		templates[domain] = string(raw)
	}
	return &Synthesizer{templates: templates, logger: logger}, nil
}

// Synthesize classifies the request, fills the domain template with
// parameters extracted from the prompt, and returns a successful result
// tagged as fallback. It never fails: extraction degrades to defaults and
// the general template covers unclassifiable prompts.
func (s *Synthesizer) Synthesize(messages []models.Message) models.GenerationResult {
	prompt := firstUserMessage(messages)
	domain := classify.Domain(prompt)
	params := ExtractParams(prompt)

	tpl, ok := s.templates[domain]
	if !ok {
		tpl = s.templates[models.DomainGeneral]
	}

	content := render(tpl, params)

	s.logger.Info("synthesized fallback content",
		zap.String("domain", string(domain)),
		zap.String("subject", params.Subject),
		zap.String("topic", params.Topic),
		zap.String("grade", params.Grade),
	)

	return models.GenerationResult{
		Success:      true,
		Content:      content,
		ModelUsed:    ModelName,
		QualityScore: QualityScore,
		IsFallback:   true,
		Usage:        syntheticUsage,
	}
}

func firstUserMessage(messages []models.Message) string {
	for _, m := range messages {
		if m.Role == models.RoleUser {
			return m.Content
		}
	}
	return ""
}

// render substitutes template placeholders. Values are JSON-escaped so a
// quoted topic cannot break document structure.
func render(tpl string, params PromptParams) string {
	r := strings.NewReplacer(
		"{{subject}}", jsonEscape(params.Subject),
		"{{topic}}", jsonEscape(params.Topic),
		"{{grade}}", jsonEscape(params.Grade),
	)
	return r.Replace(tpl)
}

func jsonEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return r.Replace(s)
}
