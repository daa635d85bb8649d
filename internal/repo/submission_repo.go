package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Postline/internal/domain"
)

const submissionColumns = `id, post_id, venue, status, attempt, scheduled_at, last_error, updated_at, created_at`

// SubmissionRepo — репозиторий для работы с submissions.
type SubmissionRepo struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepo создаёт новый SubmissionRepo.
func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

// Create создаёт новую submission.
func (r *SubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	query := `
		INSERT INTO submissions (id, post_id, venue, status, attempt, scheduled_at, last_error, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
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
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: submission chain for (post, venue)", ErrAlreadyExists)
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByID возвращает submission по ID.
func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return r.scanSubmission(r.pool.QueryRow(ctx, query, id))
}

// ListByPost возвращает всю цепочку submissions поста,
// в порядке создания.
func (r *SubmissionRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE post_id = $1
		ORDER BY venue ASC, attempt ASC
	`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list submissions by post: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// List возвращает submissions с фильтрацией по статусу и площадке.
func (r *SubmissionRepo) List(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE ($1::text IS NULL OR status = $1::submission_status)
		  AND ($2::text IS NULL OR venue = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		nullString(filter.Venue),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListDue возвращает submissions, готовые к доставке: статус
// SCHEDULED или RETRY_SCHEDULED и scheduled_at <= now. Порядок —
// по scheduled_at, затем по id (FIFO с детерминированным tie-break).
//
// Только чтение; для конкурентной доставки используйте ClaimDue.
func (r *SubmissionRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE status IN ('SCHEDULED', 'RETRY_SCHEDULED')
		  AND scheduled_at <= $1
		ORDER BY scheduled_at ASC, id ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due submissions: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ClaimDue атомарно захватывает due submissions: переводит строки
// SCHEDULED/RETRY_SCHEDULED с scheduled_at <= now в IN_PROGRESS и
// возвращает их. FOR UPDATE SKIP LOCKED гарантирует, что два
// конкурентных dispatcher'а никогда не получат одну и ту же строку.
func (r *SubmissionRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.Submission, error) {
	query := `
		UPDATE submissions
		SET status = 'IN_PROGRESS', updated_at = $1
		WHERE id IN (
			SELECT id FROM submissions
			WHERE status IN ('SCHEDULED', 'RETRY_SCHEDULED')
			  AND scheduled_at <= $1
			ORDER BY scheduled_at ASC, id ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + submissionColumns
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due submissions: %w", err)
	}
	defer rows.Close()

	claimed, err := r.collect(rows)
	if err != nil {
		return nil, err
	}

	// RETURNING отдаёт строки в порядке обновления; восстанавливаем
	// FIFO-порядок по scheduled_at, id.
	sortSubmissions(claimed)
	return claimed, nil
}

// Update атомарно записывает статус и last_error. Переход проверяется
// по таблице допустимых переходов: финальные строки не изменяются,
// недопустимый переход возвращает ErrInvalidState. Строка блокируется
// на время проверки, чтобы конкурентный dispatcher не проскочил между
// чтением и записью.
func (r *SubmissionRepo) Update(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, lastError string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current domain.SubmissionStatus
	err = tx.QueryRow(ctx, `SELECT status FROM submissions WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock submission: %w", err)
	}
	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, current, status)
	}

	_, err = tx.Exec(ctx, `
		UPDATE submissions
		SET status = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, nullString(lastError))
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// RequeueStale возвращает в очередь заявки, застрявшие в IN_PROGRESS:
// dispatcher захватил их, но упал до записи исхода. Строки со старым
// updated_at переводятся обратно в RETRY_SCHEDULED и подхватываются
// следующим ClaimDue.
func (r *SubmissionRepo) RequeueStale(ctx context.Context, olderThan time.Time) (int, error) {
	query := `
		UPDATE submissions
		SET status = 'RETRY_SCHEDULED', updated_at = NOW()
		WHERE status = 'IN_PROGRESS'
		  AND updated_at < $1
	`
	result, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("requeue stale submissions: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// RecordRetry в одной транзакции помечает текущую строку как
// SUPERSEDED с текстом ошибки (audit trail) и вставляет новую
// RETRY_SCHEDULED строку, несущую активное ожидание цепочки вперёд.
// Старая строка становится финальной и больше не выбирается ClaimDue.
func (r *SubmissionRepo) RecordRetry(ctx context.Context, currentID uuid.UUID, lastError string, next *domain.Submission) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE submissions
		SET status = 'SUPERSEDED', last_error = $2, updated_at = NOW()
		WHERE id = $1
		  AND status NOT IN ('SUBMITTED', 'FAILED', 'SUPERSEDED')
	`, currentID, nullString(lastError))
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInvalidState
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO submissions (id, post_id, venue, status, attempt, scheduled_at, last_error, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		next.ID,
		next.PostID,
		next.Venue,
		next.Status,
		next.Attempt,
		next.ScheduledAt,
		nullString(next.LastError),
		next.UpdatedAt,
		next.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert retry submission: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- Helpers ---

// SubmissionFilter — параметры фильтрации submissions.
type SubmissionFilter struct {
	Status domain.SubmissionStatus
	Venue  string
	Limit  int
	Offset int
}

func (r *SubmissionRepo) collect(rows pgx.Rows) ([]domain.Submission, error) {
	var subs []domain.Submission
	for rows.Next() {
		sub, err := scanSubmissionFromRows(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (r *SubmissionRepo) scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	var lastError *string

	err := row.Scan(
		&s.ID,
		&s.PostID,
		&s.Venue,
		&s.Status,
		&s.Attempt,
		&s.ScheduledAt,
		&lastError,
		&s.UpdatedAt,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	if lastError != nil {
		s.LastError = *lastError
	}
	return &s, nil
}

func scanSubmissionFromRows(rows pgx.Rows) (*domain.Submission, error) {
	var s domain.Submission
	var lastError *string

	err := rows.Scan(
		&s.ID,
		&s.PostID,
		&s.Venue,
		&s.Status,
		&s.Attempt,
		&s.ScheduledAt,
		&lastError,
		&s.UpdatedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	if lastError != nil {
		s.LastError = *lastError
	}
	return &s, nil
}

func sortSubmissions(subs []domain.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].ScheduledAt.Equal(subs[j].ScheduledAt) {
			return subs[i].ScheduledAt.Before(subs[j].ScheduledAt)
		}
		return subs[i].ID.String() < subs[j].ID.String()
	})
}
