package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Postline/internal/domain"
)

// PostRepo — репозиторий для работы с posts.
type PostRepo struct {
	pool *pgxpool.Pool
}

// NewPostRepo создаёт новый PostRepo.
func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

// CreateWithSubmission сохраняет пост и его первую submission
// в одной транзакции: либо обе строки, либо ни одной. Гарантирует,
// что не существует поста без начальной submission.
func (r *PostRepo) CreateWithSubmission(ctx context.Context, post *domain.Post, sub *domain.Submission) error {
	payloadJSON, err := json.Marshal(post.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO posts (id, payload, created_at)
		VALUES ($1, $2, $3)
	`, post.ID, payloadJSON, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO submissions (id, post_id, venue, status, attempt, scheduled_at, last_error, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		sub.ID,
		sub.PostID,
		sub.Venue,
		sub.Status,
		sub.Attempt,
		sub.ScheduledAt,
		nullString(sub.LastError),
		sub.UpdatedAt,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID возвращает пост по ID.
func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `SELECT id, payload, created_at FROM posts WHERE id = $1`
	return r.scanPost(r.pool.QueryRow(ctx, query, id))
}

// GetPayload возвращает payload поста по ID.
func (r *PostRepo) GetPayload(ctx context.Context, id uuid.UUID) (domain.PostPayload, error) {
	var payloadJSON []byte
	err := r.pool.QueryRow(ctx, `SELECT payload FROM posts WHERE id = $1`, id).Scan(&payloadJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PostPayload{}, ErrNotFound
	}
	if err != nil {
		return domain.PostPayload{}, fmt.Errorf("get payload: %w", err)
	}

	var payload domain.PostPayload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return domain.PostPayload{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	return payload, nil
}

// List возвращает посты, новые первыми.
func (r *PostRepo) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	query := `
		SELECT id, payload, created_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := r.scanPostFromRows(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// --- Helpers ---

func (r *PostRepo) scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	var payloadJSON []byte

	err := row.Scan(&p.ID, &payloadJSON, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}

	if err := json.Unmarshal(payloadJSON, &p.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &p, nil
}

func (r *PostRepo) scanPostFromRows(rows pgx.Rows) (*domain.Post, error) {
	var p domain.Post
	var payloadJSON []byte

	err := rows.Scan(&p.ID, &payloadJSON, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}

	if err := json.Unmarshal(payloadJSON, &p.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &p, nil
}
