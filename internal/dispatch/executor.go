package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/models"
)

// ExecutorConfig carries the backend endpoint settings.
type ExecutorConfig struct {
	APIKey  string
	BaseURL string
	// Referer and Title are OpenRouter attribution headers.
	Referer string
	Title   string
	Timeout time.Duration
}

// Executor performs one network call to one candidate model. It never
// returns an error: transport failures, non-2xx statuses and malformed
// bodies all become Err envelopes so the cascade can advance.
type Executor struct {
	cfg    ExecutorConfig
	client *http.Client
	logger *zap.Logger
}

// NewExecutor creates an executor with its own HTTP client and timeout.
func NewExecutor(cfg ExecutorConfig, logger *zap.Logger) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Executor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// chatRequest is the outbound wire shape expected by the backend.
type chatRequest struct {
	Model            string           `json:"model"`
	Messages         []models.Message `json:"messages"`
	Temperature      float64          `json:"temperature"`
	MaxTokens        int              `json:"max_tokens"`
	TopP             float64          `json:"top_p"`
	FrequencyPenalty float64          `json:"frequency_penalty"`
	PresencePenalty  float64          `json:"presence_penalty"`
}

// chatResponse models the backend body with optional-field extraction; any
// absent or malformed piece yields an Err envelope rather than a panic.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage models.UsageStats `json:"usage"`
}

// Execute sends one chat-completion request to one model.
func (x *Executor) Execute(ctx context.Context, model string, messages []models.Message, temperature float64, maxTokens int) BackendEnvelope {
	payload := chatRequest{
		Model:            model,
		Messages:         messages,
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ErrEnvelope(fmt.Sprintf("encode request: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, x.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(x.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ErrEnvelope(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+x.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if x.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", x.cfg.Referer)
	}
	if x.cfg.Title != "" {
		req.Header.Set("X-Title", x.cfg.Title)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return ErrEnvelope(fmt.Sprintf("transport: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrEnvelope(fmt.Sprintf("read body: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		x.logger.Warn("backend returned non-2xx",
			zap.String("model", model),
			zap.Int("status", resp.StatusCode),
		)
		return ErrEnvelope(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ErrEnvelope("malformed envelope")
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return ErrEnvelope("malformed envelope")
	}

	return OkEnvelope(*parsed.Choices[0].Message.Content, parsed.Usage)
}
