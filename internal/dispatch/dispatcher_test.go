package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/models"
)

// validContent passes the validator: long enough with two indicators.
const validContent = "Here is a detailed explanation with a worked example covering the whole chapter for the student."

// scriptedBackend returns canned envelopes in order and records the models
// it was asked to call.
type scriptedBackend struct {
	envelopes []BackendEnvelope
	calls     []string
}

func (b *scriptedBackend) Execute(ctx context.Context, model string, messages []models.Message, temperature float64, maxTokens int) BackendEnvelope {
	b.calls = append(b.calls, model)
	idx := len(b.calls) - 1
	if idx >= len(b.envelopes) {
		return ErrEnvelope("unscripted call")
	}
	return b.envelopes[idx]
}

type stubSynthesizer struct {
	called   bool
	messages []models.Message
}

func (s *stubSynthesizer) Synthesize(messages []models.Message) models.GenerationResult {
	s.called = true
	s.messages = messages
	return models.GenerationResult{
		Success:      true,
		Content:      `{"fallback": true}`,
		ModelUsed:    "fallback",
		QualityScore: 0.6,
		IsFallback:   true,
	}
}

func newTestDispatcher(backend BackendCaller, synth FallbackSynthesizer) *Dispatcher {
	selector := NewSelector(SelectorConfig{
		PremiumModels:   []string{"premium/a", "premium/b"},
		PremiumAttempts: 2,
		FreeModels:      []string{"free/a", "free/b"},
	})
	pacer := NewPacerWithClock(0,
		func() time.Time { return time.Now() },
		func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	)
	return NewDispatcher(pacer, selector, backend, NewValidator(), synth, zap.NewNop())
}

func quizRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Messages:    []models.Message{{Role: models.RoleUser, Content: "Make a quiz on optics"}},
		Temperature: 0.7,
		MaxTokens:   4000,
	}
}

func TestGenerateFirstCandidateSucceeds(t *testing.T) {
	backend := &scriptedBackend{envelopes: []BackendEnvelope{
		OkEnvelope(validContent, models.UsageStats{TotalTokens: 42}),
	}}
	synth := &stubSynthesizer{}
	d := newTestDispatcher(backend, synth)

	result, err := d.Generate(context.Background(), quizRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !result.Success {
		t.Error("Expected successful result")
	}
	if result.ModelUsed != "premium/a" {
		t.Errorf("Expected premium/a, got %s", result.ModelUsed)
	}
	if result.IsFallback {
		t.Error("Expected live result, got fallback")
	}
	if len(backend.calls) != 1 {
		t.Errorf("Expected early return after first success, got %d calls", len(backend.calls))
	}
	if synth.called {
		t.Error("Synthesizer must not run on success")
	}
	if result.QualityScore <= 0 {
		t.Errorf("Expected positive quality score, got %v", result.QualityScore)
	}
}

func TestGenerateAdvancesPastTransportErrors(t *testing.T) {
	backend := &scriptedBackend{envelopes: []BackendEnvelope{
		ErrEnvelope("status 503"),
		ErrEnvelope("transport: connection refused"),
		OkEnvelope(validContent, models.UsageStats{}),
	}}
	synth := &stubSynthesizer{}
	d := newTestDispatcher(backend, synth)

	result, err := d.Generate(context.Background(), quizRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.ModelUsed != "free/a" {
		t.Errorf("Expected third candidate free/a, got %s", result.ModelUsed)
	}
	if len(backend.calls) != 3 {
		t.Errorf("Expected 3 attempts, got %d", len(backend.calls))
	}
}

func TestGenerateAdvancesPastQualityRejection(t *testing.T) {
	backend := &scriptedBackend{envelopes: []BackendEnvelope{
		OkEnvelope("ok but too short", models.UsageStats{}),
		OkEnvelope(validContent, models.UsageStats{}),
	}}
	synth := &stubSynthesizer{}
	d := newTestDispatcher(backend, synth)

	result, err := d.Generate(context.Background(), quizRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.ModelUsed != "premium/b" {
		t.Errorf("Expected second candidate after rejection, got %s", result.ModelUsed)
	}
}

func TestGenerateFallsBackWhenCascadeExhausted(t *testing.T) {
	backend := &scriptedBackend{envelopes: []BackendEnvelope{
		ErrEnvelope("status 500"),
		ErrEnvelope("status 500"),
		ErrEnvelope("status 500"),
		ErrEnvelope("status 500"),
	}}
	synth := &stubSynthesizer{}
	d := newTestDispatcher(backend, synth)

	req := quizRequest()
	result, err := d.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !result.IsFallback {
		t.Error("Expected fallback result after exhaustion")
	}
	if !result.Success {
		t.Error("Fallback result must still report success")
	}
	if !synth.called {
		t.Fatal("Expected synthesizer to run")
	}
	// The synthesizer sees the caller's original messages, not the
	// enhanced copy.
	if len(synth.messages) != 1 || synth.messages[0] != req.Messages[0] {
		t.Errorf("Expected original messages passed to synthesizer, got %+v", synth.messages)
	}
	if len(backend.calls) != 4 {
		t.Errorf("Expected all 4 candidates attempted, got %d", len(backend.calls))
	}
}

func TestGenerateSendsEnhancedMessages(t *testing.T) {
	var sent []models.Message
	backend := &recordingBackend{onExecute: func(messages []models.Message) BackendEnvelope {
		sent = messages
		return OkEnvelope(validContent, models.UsageStats{})
	}}
	d := newTestDispatcher(backend, &stubSynthesizer{})

	if _, err := d.Generate(context.Background(), quizRequest()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(sent) != 2 || sent[0].Role != models.RoleSystem {
		t.Fatalf("Expected enhanced messages with system preamble, got %+v", sent)
	}
}

type recordingBackend struct {
	onExecute func(messages []models.Message) BackendEnvelope
}

func (b *recordingBackend) Execute(ctx context.Context, model string, messages []models.Message, temperature float64, maxTokens int) BackendEnvelope {
	return b.onExecute(messages)
}

func TestGenerateCancellationStopsCascade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	backend := &recordingBackend{onExecute: func(messages []models.Message) BackendEnvelope {
		cancel()
		return ErrEnvelope("status 500")
	}}
	d := newTestDispatcher(backend, &stubSynthesizer{})

	_, err := d.Generate(ctx, quizRequest())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGenerateEmptyCascadeIsFatal(t *testing.T) {
	pacer := NewPacerWithClock(0,
		func() time.Time { return time.Now() },
		func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	)
	d := NewDispatcher(pacer, NewSelector(SelectorConfig{}), &scriptedBackend{}, NewValidator(), &stubSynthesizer{}, zap.NewNop())

	_, err := d.Generate(context.Background(), quizRequest())
	var fatal *FatalConfigError
	if !errors.As(err, &fatal) {
		t.Fatalf("Expected FatalConfigError, got %v", err)
	}
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Expected ErrNoCandidates in chain, got %v", err)
	}
}

func TestGenerateModelOverride(t *testing.T) {
	backend := &scriptedBackend{envelopes: []BackendEnvelope{
		OkEnvelope(validContent, models.UsageStats{}),
	}}
	d := newTestDispatcher(backend, &stubSynthesizer{})

	req := quizRequest()
	req.ModelOverride = "custom/model"
	result, err := d.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.ModelUsed != "custom/model" {
		t.Errorf("Expected override model, got %s", result.ModelUsed)
	}
	if len(backend.calls) != 1 || backend.calls[0] != "custom/model" {
		t.Errorf("Expected single call to override model, got %v", backend.calls)
	}
}

func TestGenerateOverrideFailureStillFallsBack(t *testing.T) {
	backend := &scriptedBackend{envelopes: []BackendEnvelope{
		ErrEnvelope("status 404"),
	}}
	synth := &stubSynthesizer{}
	d := newTestDispatcher(backend, synth)

	req := quizRequest()
	req.ModelOverride = "custom/model"
	result, err := d.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !result.IsFallback {
		t.Error("Expected fallback when the override candidate fails")
	}
	if len(backend.calls) != 1 {
		t.Errorf("Expected no cascade beyond the override, got %v", backend.calls)
	}
}
