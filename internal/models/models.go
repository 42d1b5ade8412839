package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message sent to a generative backend.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationRequest is one logical generation call. Message order is
// significant: the first system message, if present, is the enhancement
// target.
type GenerationRequest struct {
	Messages      []Message `json:"messages"`
	Temperature   float64   `json:"temperature"`
	MaxTokens     int       `json:"max_tokens"`
	ModelOverride string    `json:"model_override,omitempty"`
}

// ModelTier distinguishes paid from free backend models.
type ModelTier string

const (
	TierPremium ModelTier = "premium"
	TierFree    ModelTier = "free"
)

// ModelCandidate is one backend model in the cascade.
type ModelCandidate struct {
	Identifier string    `json:"identifier"`
	Tier       ModelTier `json:"tier"`
}

// UsageStats mirrors the backend's token accounting block.
type UsageStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult is the caller-visible outcome of a generate call.
// Success is true for every result returned to the caller except under a
// fatal configuration error; IsFallback is the only signal that the content
// was synthesized rather than produced by a live backend.
type GenerationResult struct {
	Success      bool       `json:"success"`
	Content      string     `json:"content"`
	ModelUsed    string     `json:"model_used"`
	QualityScore float64    `json:"quality_score"`
	IsFallback   bool       `json:"is_fallback"`
	Usage        UsageStats `json:"usage"`
}

// ValidationVerdict is the Validator's pass/fail decision for one candidate
// attempt.
type ValidationVerdict struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// ContentDomain is the structured-document type inferred from request text.
type ContentDomain string

const (
	DomainQuiz        ContentDomain = "quiz"
	DomainCurriculum  ContentDomain = "curriculum"
	DomainMindmap     ContentDomain = "mindmap"
	DomainSlideDeck   ContentDomain = "slide_deck"
	DomainLecturePlan ContentDomain = "lecture_plan"
	DomainAssessment  ContentDomain = "assessment"
	DomainGeneral     ContentDomain = "general"
)

// GenerationLog records one completed generation for cost and quality
// tracking.
type GenerationLog struct {
	ID           uuid.UUID     `json:"id"`
	Domain       ContentDomain `json:"domain"`
	ModelUsed    string        `json:"model_used"`
	TokensIn     int           `json:"tokens_in"`
	TokensOut    int           `json:"tokens_out"`
	LatencyMs    int64         `json:"latency_ms"`
	QualityScore float64       `json:"quality_score"`
	IsFallback   bool          `json:"is_fallback"`
	CreatedAt    time.Time     `json:"created_at"`
}
