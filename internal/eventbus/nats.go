package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	// SubjectContentGenerated carries one event per completed generation.
	SubjectContentGenerated = "content.generated"
)

// ContentGeneratedEvent is published after every generation, including
// fallback syntheses.
type ContentGeneratedEvent struct {
	RequestID    string    `json:"request_id"`
	Domain       string    `json:"domain"`
	ModelUsed    string    `json:"model_used"`
	QualityScore float64   `json:"quality_score"`
	IsFallback   bool      `json:"is_fallback"`
	LatencyMs    int64     `json:"latency_ms"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Bus is a thin NATS publisher for generation lifecycle events.
type Bus struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// NewBus connects to NATS. Event publishing is best-effort, so callers
// may run without a bus when the connection fails at startup.
func NewBus(natsURL string, logger *zap.Logger) (*Bus, error) {
	nc, err := nats.Connect(natsURL,
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, err
	}
	return &Bus{nc: nc, logger: logger}, nil
}

// PublishContentGenerated fires an event onto the bus. Failures are logged
// and swallowed; event delivery never blocks a generation response.
func (b *Bus) PublishContentGenerated(event ContentGeneratedEvent) {
	if b == nil || b.nc == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to marshal content event", zap.Error(err))
		return
	}

	if err := b.nc.Publish(SubjectContentGenerated, payload); err != nil {
		b.logger.Warn("failed to publish content event",
			zap.String("subject", SubjectContentGenerated),
			zap.Error(err))
	}
}

// Close drains the NATS connection.
func (b *Bus) Close() {
	if b != nil && b.nc != nil {
		b.nc.Close()
	}
}
