package database

import (
	"context"
	"fmt"

	"github.com/edusarathi/content-api/internal/models"
)

// InsertGenerationLog records one completed generation, fallback or not.
func (p *Postgres) InsertGenerationLog(ctx context.Context, entry models.GenerationLog) error {
	query := `
		INSERT INTO generation_logs
			(id, domain, model_used, tokens_in, tokens_out, latency_ms, quality_score, is_fallback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := p.pool.Exec(ctx, query,
		entry.ID,
		entry.Domain,
		entry.ModelUsed,
		entry.TokensIn,
		entry.TokensOut,
		entry.LatencyMs,
		entry.QualityScore,
		entry.IsFallback,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation log: %w", err)
	}
	return nil
}

// RecentGenerationLogs returns the most recent log entries, newest first.
func (p *Postgres) RecentGenerationLogs(ctx context.Context, limit int) ([]models.GenerationLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		SELECT id, domain, model_used, tokens_in, tokens_out, latency_ms, quality_score, is_fallback, created_at
		FROM generation_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation logs: %w", err)
	}
	defer rows.Close()

	var logs []models.GenerationLog
	for rows.Next() {
		var entry models.GenerationLog
		if err := rows.Scan(
			&entry.ID,
			&entry.Domain,
			&entry.ModelUsed,
			&entry.TokensIn,
			&entry.TokensOut,
			&entry.LatencyMs,
			&entry.QualityScore,
			&entry.IsFallback,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generation log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
