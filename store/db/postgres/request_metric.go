package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/smartrouter/store"
)

func (d *DB) CreateRequestMetric(ctx context.Context, create *store.RequestMetric) (*store.RequestMetric, error) {
	if create == nil {
		return nil, fmt.Errorf("create parameter cannot be nil")
	}

	query := `
		INSERT INTO request_metric (id, created_ms, query_length, complexity, classifier_used, classification_confidence,
			model_used, latency_ms, prompt_tokens, completion_tokens, total_tokens, estimated_cost_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := d.db.ExecContext(ctx, query,
		create.ID, create.CreatedMs, create.QueryLength, create.Complexity, create.ClassifierUsed,
		create.ClassificationConfidence, create.ModelUsed, create.LatencyMs,
		create.PromptTokens, create.CompletionTokens, create.TotalTokens, create.EstimatedCostUSD,
	); err != nil {
		return nil, fmt.Errorf("failed to create request metric: %w", err)
	}

	return create, nil
}

func (d *DB) ListRequestMetrics(ctx context.Context, find *store.FindRequestMetric) ([]*store.RequestMetric, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	argIndex := 1

	if find.ModelUsed != nil {
		where = append(where, fmt.Sprintf("model_used = $%d", argIndex))
		args = append(args, *find.ModelUsed)
		argIndex++
	}
	if find.Complexity != nil {
		where = append(where, fmt.Sprintf("complexity = $%d", argIndex))
		args = append(args, *find.Complexity)
		argIndex++
	}
	if find.StartTime != nil {
		where = append(where, fmt.Sprintf("created_ms >= $%d", argIndex))
		args = append(args, find.StartTime.UnixMilli())
		argIndex++
	}
	if find.EndTime != nil {
		where = append(where, fmt.Sprintf("created_ms <= $%d", argIndex))
		args = append(args, find.EndTime.UnixMilli())
	}

	query := fmt.Sprintf(`
		SELECT id, created_ms, query_length, complexity, classifier_used, classification_confidence,
			model_used, latency_ms, prompt_tokens, completion_tokens, total_tokens, estimated_cost_usd
		FROM request_metric
		WHERE %s
		ORDER BY created_ms DESC, id DESC
	`, strings.Join(where, " AND "))

	limit := find.Limit
	if limit > 0 {
		if limit > store.MaxListLimit {
			limit = store.MaxListLimit
		}
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list request metrics: %w", err)
	}
	defer rows.Close()

	var list []*store.RequestMetric
	for rows.Next() {
		var m store.RequestMetric
		if err := rows.Scan(
			&m.ID, &m.CreatedMs, &m.QueryLength, &m.Complexity, &m.ClassifierUsed,
			&m.ClassificationConfidence, &m.ModelUsed, &m.LatencyMs,
			&m.PromptTokens, &m.CompletionTokens, &m.TotalTokens, &m.EstimatedCostUSD,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request metric: %w", err)
		}
		list = append(list, &m)
	}

	return list, rows.Err()
}

func (d *DB) DeleteRequestMetrics(ctx context.Context, delete *store.DeleteRequestMetric) error {
	if delete == nil {
		return fmt.Errorf("delete parameter cannot be nil")
	}
	if delete.BeforeTime == nil {
		return fmt.Errorf("before_time is required for deletion")
	}

	query := `DELETE FROM request_metric WHERE created_ms < $1`
	if _, err := d.db.ExecContext(ctx, query, delete.BeforeTime.UnixMilli()); err != nil {
		return fmt.Errorf("failed to delete request metrics: %w", err)
	}

	return nil
}
