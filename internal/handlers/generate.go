package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/content"
	"github.com/edusarathi/content-api/internal/dispatch"
	"github.com/edusarathi/content-api/internal/middleware"
	"github.com/edusarathi/content-api/internal/models"
)

var tracer = otel.Tracer("content-api/handlers")

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 4000
)

// GenerateHandler handles the content generation endpoints
type GenerateHandler struct {
	service content.Generator
	logger  *zap.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(service content.Generator, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{service: service, logger: logger}
}

// GenerateRequest is the request body for the generic generation endpoint.
// Either a message list or a plain prompt must be provided.
type GenerateRequest struct {
	Messages    []models.Message `json:"messages"`
	Prompt      string           `json:"prompt"`
	Temperature *float64         `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
	Model       string           `json:"model"`
}

// Generate handles POST /api/v1/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "handlers.Generate")
	defer span.End()

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}

	messages := req.Messages
	if len(messages) == 0 {
		if strings.TrimSpace(req.Prompt) == "" {
			middleware.BadRequest(c, "either messages or prompt is required")
			return
		}
		messages = []models.Message{{Role: models.RoleUser, Content: req.Prompt}}
	}

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	h.respond(ctx, c, models.GenerationRequest{
		Messages:      messages,
		Temperature:   temperature,
		MaxTokens:     maxTokens,
		ModelOverride: req.Model,
	})
}

// QuizRequest is the request body for quiz generation
type QuizRequest struct {
	Subject       string `json:"subject" binding:"required"`
	Topic         string `json:"topic" binding:"required"`
	Grade         string `json:"grade"`
	QuestionCount int    `json:"question_count"`
	Difficulty    string `json:"difficulty"`
	Language      string `json:"language"`
}

// GenerateQuiz handles POST /api/v1/quiz/generate
func (h *GenerateHandler) GenerateQuiz(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "handlers.GenerateQuiz")
	defer span.End()

	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	if req.QuestionCount <= 0 {
		req.QuestionCount = 10
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	prompt := fmt.Sprintf(
		"Generate a quiz with %d multiple choice questions on %s for class %s %s. "+
			"Difficulty: %s. Return the quiz as a JSON object with a questions array, "+
			"where each question has the question text, four options, the correct answer and an explanation.",
		req.QuestionCount, req.Topic, gradeOrDefault(req.Grade), req.Subject, req.Difficulty,
	)
	prompt = withLanguage(prompt, req.Language)

	h.respond(ctx, c, promptRequest(prompt))
}

// CurriculumRequest is the request body for curriculum generation
type CurriculumRequest struct {
	Subject      string `json:"subject" binding:"required"`
	Grade        string `json:"grade"`
	DurationDays int    `json:"duration_days"`
	Focus        string `json:"focus"`
	Language     string `json:"language"`
}

// GenerateCurriculum handles POST /api/v1/curriculum/generate
func (h *GenerateHandler) GenerateCurriculum(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "handlers.GenerateCurriculum")
	defer span.End()

	var req CurriculumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}

	prompt := fmt.Sprintf(
		"Create a detailed curriculum for %s for class %s aligned with the NCERT syllabus. "+
			"Structure it as a JSON object with units, where each unit lists topics, "+
			"learning objectives, suggested activities and an assessment plan.",
		req.Subject, gradeOrDefault(req.Grade),
	)
	if req.DurationDays > 0 {
		prompt += fmt.Sprintf(" Plan for a duration of %d teaching days.", req.DurationDays)
	}
	if req.Focus != "" {
		prompt += fmt.Sprintf(" Emphasize %s.", req.Focus)
	}
	prompt = withLanguage(prompt, req.Language)

	h.respond(ctx, c, promptRequest(prompt))
}

// MindmapRequest is the request body for mindmap generation
type MindmapRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Topic    string `json:"topic" binding:"required"`
	Grade    string `json:"grade"`
	Language string `json:"language"`
}

// GenerateMindmap handles POST /api/v1/mindmap/generate
func (h *GenerateHandler) GenerateMindmap(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "handlers.GenerateMindmap")
	defer span.End()

	var req MindmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}

	prompt := fmt.Sprintf(
		"Create a concept mindmap on %s in %s for class %s students. "+
			"Return a JSON object with a central concept and branches, where each branch "+
			"has a label and child nodes covering key sub-concepts with short explanations.",
		req.Topic, req.Subject, gradeOrDefault(req.Grade),
	)
	prompt = withLanguage(prompt, req.Language)

	h.respond(ctx, c, promptRequest(prompt))
}

// SlidesRequest is the request body for slide deck generation
type SlidesRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Topic      string `json:"topic" binding:"required"`
	Grade      string `json:"grade"`
	SlideCount int    `json:"slide_count"`
	Language   string `json:"language"`
}

// GenerateSlides handles POST /api/v1/slides/generate
func (h *GenerateHandler) GenerateSlides(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "handlers.GenerateSlides")
	defer span.End()

	var req SlidesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	if req.SlideCount <= 0 {
		req.SlideCount = 10
	}

	prompt := fmt.Sprintf(
		"Create a slide presentation with %d slides on %s in %s for class %s. "+
			"Return a JSON object with a slides array, where each slide has a title, "+
			"bullet points and speaker notes suitable for classroom teaching.",
		req.SlideCount, req.Topic, req.Subject, gradeOrDefault(req.Grade),
	)
	prompt = withLanguage(prompt, req.Language)

	h.respond(ctx, c, promptRequest(prompt))
}

// LecturePlanRequest is the request body for lecture plan generation
type LecturePlanRequest struct {
	Subject         string `json:"subject" binding:"required"`
	Topic           string `json:"topic" binding:"required"`
	Grade           string `json:"grade"`
	DurationMinutes int    `json:"duration_minutes"`
	Language        string `json:"language"`
}

// GenerateLecturePlan handles POST /api/v1/lecture-plan/generate
func (h *GenerateHandler) GenerateLecturePlan(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "handlers.GenerateLecturePlan")
	defer span.End()

	var req LecturePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 45
	}

	prompt := fmt.Sprintf(
		"Create a %d minute lecture plan for teaching %s in %s to class %s students. "+
			"Return a JSON object structured around the 5E model with phases, where each phase "+
			"has learning objectives, teacher activities, student activities and timing.",
		req.DurationMinutes, req.Topic, req.Subject, gradeOrDefault(req.Grade),
	)
	prompt = withLanguage(prompt, req.Language)

	h.respond(ctx, c, promptRequest(prompt))
}

// AssessmentRequest is the request body for assessment generation
type AssessmentRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Topic      string `json:"topic" binding:"required"`
	Grade      string `json:"grade"`
	TotalMarks int    `json:"total_marks"`
	Language   string `json:"language"`
}

// GenerateAssessment handles POST /api/v1/assessment/generate
func (h *GenerateHandler) GenerateAssessment(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "handlers.GenerateAssessment")
	defer span.End()

	var req AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, err.Error())
		return
	}
	if req.TotalMarks <= 0 {
		req.TotalMarks = 50
	}

	prompt := fmt.Sprintf(
		"Create an exam assessment paper on %s in %s for class %s worth %d marks. "+
			"Return a JSON object with sections for objective, short answer and long answer questions, "+
			"including a marking scheme and grading rubric for evaluation.",
		req.Topic, req.Subject, gradeOrDefault(req.Grade), req.TotalMarks,
	)
	prompt = withLanguage(prompt, req.Language)

	h.respond(ctx, c, promptRequest(prompt))
}

// respond runs the generation and writes the result. The dispatcher only
// errors on cancellation or fatal misconfiguration; every other outcome,
// including fallback synthesis, is a 200.
func (h *GenerateHandler) respond(ctx context.Context, c *gin.Context, req models.GenerationRequest) {
	result, err := h.service.Generate(ctx, req)
	if err != nil {
		var fatal *dispatch.FatalConfigError
		if errors.As(err, &fatal) {
			h.logger.Error("generation misconfigured", zap.Error(err))
			middleware.InternalError(c, "content generation is misconfigured")
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, gin.H{
				"error": middleware.APIError{
					Code:    "REQUEST_CANCELLED",
					Message: "the request was cancelled before generation completed",
				},
			})
			return
		}
		h.logger.Error("generation failed", zap.Error(err))
		middleware.InternalError(c, "content generation failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

func promptRequest(prompt string) models.GenerationRequest {
	return models.GenerationRequest{
		Messages:    []models.Message{{Role: models.RoleUser, Content: prompt}},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

func gradeOrDefault(grade string) string {
	if strings.TrimSpace(grade) == "" {
		return "11"
	}
	return grade
}

func withLanguage(prompt, language string) string {
	if language == "" {
		return prompt
	}
	return prompt + fmt.Sprintf(" Write all content in %s.", language)
}
