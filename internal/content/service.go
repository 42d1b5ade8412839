package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusarathi/content-api/internal/classify"
	"github.com/edusarathi/content-api/internal/database"
	"github.com/edusarathi/content-api/internal/eventbus"
	"github.com/edusarathi/content-api/internal/models"
)

// Generator produces content for a generation request. The dispatcher
// satisfies this; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error)
}

// Service wraps the dispatcher with caching, persistence and events.
// Cache and database are optional; the service degrades to dispatch-only
// when they are nil.
type Service struct {
	generator Generator
	cache     *database.Redis
	db        *database.Postgres
	bus       *eventbus.Bus
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewService creates a content service.
func NewService(generator Generator, cache *database.Redis, db *database.Postgres, bus *eventbus.Bus, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		cache:     cache,
		db:        db,
		bus:       bus,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Generate runs one generation request end to end: cache lookup, dispatch,
// log persistence and event publication. Synthesized fallback results are
// never cached, so a later request gets another shot at the real backends.
func (s *Service) Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	key := cacheKey(req)

	if s.cache != nil {
		if cached, hit, err := s.cache.GetString(ctx, key); err != nil {
			s.logger.Warn("cache lookup failed", zap.Error(err))
		} else if hit {
			var result models.GenerationResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				s.logger.Info("cache hit", zap.String("key", key))
				return result, nil
			}
			s.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
		}
	}

	start := time.Now()
	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		return models.GenerationResult{}, err
	}
	latency := time.Since(start)

	domain := classify.FromMessages(req.Messages)
	s.recordLog(ctx, domain, result, latency)
	s.publishEvent(domain, result, latency)

	if s.cache != nil && !result.IsFallback {
		payload, err := json.Marshal(result)
		if err == nil {
			if err := s.cache.SetString(ctx, key, string(payload), s.cacheTTL); err != nil {
				s.logger.Warn("cache store failed", zap.Error(err))
			}
		}
	}

	return result, nil
}

// RecentLogs returns the newest generation log entries.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]models.GenerationLog, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.RecentGenerationLogs(ctx, limit)
}

func (s *Service) recordLog(ctx context.Context, domain models.ContentDomain, result models.GenerationResult, latency time.Duration) {
	if s.db == nil {
		return
	}

	entry := models.GenerationLog{
		ID:           uuid.New(),
		Domain:       domain,
		ModelUsed:    result.ModelUsed,
		TokensIn:     result.Usage.PromptTokens,
		TokensOut:    result.Usage.CompletionTokens,
		LatencyMs:    latency.Milliseconds(),
		QualityScore: result.QualityScore,
		IsFallback:   result.IsFallback,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.db.InsertGenerationLog(ctx, entry); err != nil {
		s.logger.Error("failed to persist generation log", zap.Error(err))
	}
}

func (s *Service) publishEvent(domain models.ContentDomain, result models.GenerationResult, latency time.Duration) {
	if s.bus == nil {
		return
	}

	s.bus.PublishContentGenerated(eventbus.ContentGeneratedEvent{
		RequestID:    uuid.New().String(),
		Domain:       string(domain),
		ModelUsed:    result.ModelUsed,
		QualityScore: result.QualityScore,
		IsFallback:   result.IsFallback,
		LatencyMs:    latency.Milliseconds(),
		GeneratedAt:  time.Now().UTC(),
	})
}

// cacheKey hashes the full request so that any change in messages or
// sampling parameters misses the cache.
func cacheKey(req models.GenerationRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return "content:unkeyed"
	}
	sum := sha256.Sum256(payload)
	return "content:" + hex.EncodeToString(sum[:])
}
