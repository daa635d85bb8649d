package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission — одна записанная попытка доставки Post на площадку.
//
// Submissions для пары (post, venue) образуют append-only цепочку:
// retry создаёт новую строку с attempt = предыдущий + 1, а не
// переписывает историю. Это даёт полный audit trail каждой попытки
// и её исхода.
//
// Инварианты:
//   - ровно одна строка на (post, venue, attempt);
//   - не более одной нефинальной строки на (post, venue) — цепочка
//     продвигается линейно;
//   - attempt строго растёт вдоль цепочки.
type Submission struct {
	// ID — уникальный идентификатор submission.
	ID uuid.UUID `json:"id"`

	// PostID — ссылка на доставляемый Post.
	PostID uuid.UUID `json:"post_id"`

	// Venue — имя площадки ("youtube", "twitter", ...).
	Venue string `json:"venue"`

	// Status — текущий статус попытки.
	Status SubmissionStatus `json:"status"`

	// Attempt — номер попытки (с нуля), монотонно растёт вдоль цепочки.
	Attempt int `json:"attempt"`

	// ScheduledAt — момент, начиная с которого submission считается due.
	ScheduledAt time.Time `json:"scheduled_at"`

	// LastError — текст последней ошибки доставки.
	LastError string `json:"last_error,omitempty"`

	// UpdatedAt — время последнего изменения строки.
	UpdatedAt time.Time `json:"updated_at"`

	// CreatedAt — время создания строки.
	CreatedAt time.Time `json:"created_at"`
}

// IsDue проверяет, пора ли доставлять.
func (s *Submission) IsDue(now time.Time) bool {
	if !s.Status.IsPending() {
		return false
	}
	return !s.ScheduledAt.After(now)
}

// NextAttempt возвращает номер следующей попытки в цепочке.
func (s *Submission) NextAttempt() int {
	return s.Attempt + 1
}

// NewSubmission создаёт первую строку цепочки (attempt=0, SCHEDULED).
func NewSubmission(postID uuid.UUID, venue string, scheduledAt, now time.Time) *Submission {
	return &Submission{
		ID:          uuid.New(),
		PostID:      postID,
		Venue:       venue,
		Status:      StatusScheduled,
		Attempt:     0,
		ScheduledAt: scheduledAt,
		UpdatedAt:   now,
		CreatedAt:   now,
	}
}

// NewRetrySubmission создаёт строку, продолжающую цепочку после
// неудачной попытки prev.
func NewRetrySubmission(prev *Submission, scheduledAt, now time.Time) *Submission {
	return &Submission{
		ID:          uuid.New(),
		PostID:      prev.PostID,
		Venue:       prev.Venue,
		Status:      StatusRetryScheduled,
		Attempt:     prev.NextAttempt(),
		ScheduledAt: scheduledAt,
		UpdatedAt:   now,
		CreatedAt:   now,
	}
}
