package dispatch

import "github.com/edusarathi/content-api/internal/models"

// educationalContext is the fixed domain-expertise preamble injected into
// every outbound request.
const educationalContext = `You are an expert educational AI with deep knowledge of:
- NCERT curriculum and Indian education standards
- Advanced pedagogical methods and instructional design
- Age-appropriate content development and scaffolding
- Comprehensive assessment strategies and rubric design
- Cultural sensitivity and multilingual education
- Technology integration and accessibility features

Always provide responses with:
1. Detailed pedagogical reasoning and educational theory application
2. Comprehensive content structure with multiple learning modalities
3. NCERT alignment with specific chapter and learning outcome references
4. Professional assessment criteria and clear marking schemes
5. Accessibility features and differentiated instruction options
6. Real-world applications and cross-curricular connections`

// EnhanceContext merges the educational preamble into the first system
// message, or prepends a new system message when none exists. Pure function:
// the input slice is never mutated.
func EnhanceContext(messages []models.Message) []models.Message {
	if len(messages) == 0 {
		return []models.Message{{Role: models.RoleSystem, Content: educationalContext}}
	}

	out := make([]models.Message, 0, len(messages)+1)
	if messages[0].Role == models.RoleSystem {
		out = append(out, models.Message{
			Role:    models.RoleSystem,
			Content: messages[0].Content + "\n\n" + educationalContext,
		})
		out = append(out, messages[1:]...)
		return out
	}

	out = append(out, models.Message{Role: models.RoleSystem, Content: educationalContext})
	out = append(out, messages...)
	return out
}
