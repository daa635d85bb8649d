package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Postline/internal/domain"
)

// MetricsRepo — репозиторий для показателей опубликованных постов.
type MetricsRepo struct {
	pool *pgxpool.Pool
}

// NewMetricsRepo создаёт новый MetricsRepo.
func NewMetricsRepo(pool *pgxpool.Pool) *MetricsRepo {
	return &MetricsRepo{pool: pool}
}

// Record сохраняет запись показателей.
func (r *MetricsRepo) Record(ctx context.Context, m *domain.PostMetrics) error {
	query := `
		INSERT INTO post_metrics (id, post_id, views, clicks, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, m.ID, m.PostID, m.Views, m.Clicks, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert post metrics: %w", err)
	}
	return nil
}

// ListByPost возвращает записи показателей поста, новые первыми.
func (r *MetricsRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.PostMetrics, error) {
	query := `
		SELECT id, post_id, views, clicks, recorded_at
		FROM post_metrics
		WHERE post_id = $1
		ORDER BY recorded_at DESC
	`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list post metrics: %w", err)
	}
	defer rows.Close()

	var metrics []domain.PostMetrics
	for rows.Next() {
		var m domain.PostMetrics
		if err := rows.Scan(&m.ID, &m.PostID, &m.Views, &m.Clicks, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan post metrics: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
