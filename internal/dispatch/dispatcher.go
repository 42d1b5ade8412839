package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/classify"
	"github.com/edusarathi/content-api/internal/models"
)

// ErrNoCandidates signals an empty candidate cascade: a deployment bug, not
// a transient runtime condition. It is the only error a well-formed request
// can surface.
var ErrNoCandidates = errors.New("dispatch: no candidate models configured")

// FatalConfigError wraps configuration-level failures that must propagate to
// the caller instead of degrading to fallback content.
type FatalConfigError struct {
	Err error
}

func (e *FatalConfigError) Error() string { return fmt.Sprintf("fatal configuration: %v", e.Err) }
func (e *FatalConfigError) Unwrap() error { return e.Err }

// BackendCaller performs one attempt against one candidate model.
type BackendCaller interface {
	Execute(ctx context.Context, model string, messages []models.Message, temperature float64, maxTokens int) BackendEnvelope
}

// FallbackSynthesizer produces a schema-correct document without any network
// call. Implementations never fail.
type FallbackSynthesizer interface {
	Synthesize(messages []models.Message) models.GenerationResult
}

// Dispatcher orchestrates the candidate cascade: enhance context, build the
// ordered candidate list, attempt each sequentially behind the pacer, accept
// the first validated completion, and synthesize fallback content when the
// cascade is exhausted. Every terminal state except a fatal configuration
// error returns a successful result.
type Dispatcher struct {
	pacer     *Pacer
	selector  *Selector
	executor  BackendCaller
	validator *Validator
	fallback  FallbackSynthesizer
	logger    *zap.Logger
}

// NewDispatcher wires the dispatch pipeline.
func NewDispatcher(pacer *Pacer, selector *Selector, executor BackendCaller, validator *Validator, fallback FallbackSynthesizer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		pacer:     pacer,
		selector:  selector,
		executor:  executor,
		validator: validator,
		fallback:  fallback,
		logger:    logger,
	}
}

// Generate runs one generation request through the cascade. Candidates are
// attempted strictly sequentially; cancellation stops the loop between
// attempts and abandons the in-flight call.
func (d *Dispatcher) Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	enhanced := EnhanceContext(req.Messages)
	domain := classify.FromMessages(req.Messages)

	candidates := d.selector.Candidates(domain, req.ModelOverride)
	if len(candidates) == 0 {
		return models.GenerationResult{}, &FatalConfigError{Err: ErrNoCandidates}
	}

	for _, candidate := range candidates {
		if err := d.pacer.Wait(ctx); err != nil {
			return models.GenerationResult{}, err
		}

		start := time.Now()
		envelope := d.executor.Execute(ctx, candidate.Identifier, enhanced, req.Temperature, req.MaxTokens)
		backendLatency.WithLabelValues(candidate.Identifier).Observe(time.Since(start).Seconds())

		if ctx.Err() != nil {
			return models.GenerationResult{}, ctx.Err()
		}

		if !envelope.Ok() {
			attemptsTotal.WithLabelValues(candidate.Identifier, "transport_error").Inc()
			d.logger.Info("candidate failed, advancing cascade",
				zap.String("model", candidate.Identifier),
				zap.String("tier", string(candidate.Tier)),
				zap.String("reason", envelope.Reason()),
			)
			continue
		}

		verdict := d.validator.Check(envelope.Content())
		if !verdict.Passed {
			// Reachable but low-value backend; logged distinctly from
			// transport failures.
			attemptsTotal.WithLabelValues(candidate.Identifier, "quality_rejected").Inc()
			d.logger.Warn("candidate response rejected by validator",
				zap.String("model", candidate.Identifier),
				zap.String("reason", verdict.Reason),
			)
			continue
		}

		attemptsTotal.WithLabelValues(candidate.Identifier, "ok").Inc()
		return models.GenerationResult{
			Success:      true,
			Content:      envelope.Content(),
			ModelUsed:    candidate.Identifier,
			QualityScore: Score(envelope.Content()),
			Usage:        envelope.Usage(),
		}, nil
	}

	fallbacksTotal.Inc()
	d.logger.Warn("candidate cascade exhausted, synthesizing fallback",
		zap.String("domain", string(domain)),
		zap.Int("candidates_tried", len(candidates)),
	)
	return d.fallback.Synthesize(req.Messages), nil
}
