package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Postline/internal/domain"
)

// Post DTOs

// CreatePostRequest — запрос на планирование поста.
type CreatePostRequest struct {
	Payload     domain.PostPayload `json:"payload"`
	Venue       string             `json:"venue"`
	RequestedAt *time.Time         `json:"requested_at,omitempty"`
}

// PostResponse — ответ с постом.
type PostResponse struct {
	ID        uuid.UUID          `json:"id"`
	Payload   domain.PostPayload `json:"payload"`
	CreatedAt time.Time          `json:"created_at"`
}

// PostFromDomain конвертирует domain.Post в PostResponse.
func PostFromDomain(p domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Payload:   p.Payload,
		CreatedAt: p.CreatedAt,
	}
}

// ScheduledPostResponse — ответ на планирование: пост + первая заявка.
type ScheduledPostResponse struct {
	Post       PostResponse       `json:"post"`
	Submission SubmissionResponse `json:"submission"`
}

// Submission DTOs

// ScheduleVenueRequest — запрос на доставку поста на ещё одну площадку.
type ScheduleVenueRequest struct {
	Venue       string     `json:"venue"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
}

// SubmissionResponse — ответ с заявкой.
type SubmissionResponse struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	Venue       string    `json:"venue"`
	Status      string    `json:"status"`
	Attempt     int       `json:"attempt"`
	ScheduledAt time.Time `json:"scheduled_at"`
	LastError   string    `json:"last_error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmissionFromDomain конвертирует domain.Submission в SubmissionResponse.
func SubmissionFromDomain(s domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          s.ID,
		PostID:      s.PostID,
		Venue:       s.Venue,
		Status:      string(s.Status),
		Attempt:     s.Attempt,
		ScheduledAt: s.ScheduledAt,
		LastError:   s.LastError,
		UpdatedAt:   s.UpdatedAt,
		CreatedAt:   s.CreatedAt,
	}
}

// Analytics DTOs

// RecordMetricsRequest — запрос на запись метрик поста.
type RecordMetricsRequest struct {
	Views  int64 `json:"views"`
	Clicks int64 `json:"clicks"`
}

// MetricsResponse — ответ с метриками.
type MetricsResponse struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	Views      int64     `json:"views"`
	Clicks     int64     `json:"clicks"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MetricsFromDomain конвертирует domain.PostMetrics в MetricsResponse.
func MetricsFromDomain(m domain.PostMetrics) MetricsResponse {
	return MetricsResponse{
		ID:         m.ID,
		PostID:     m.PostID,
		Views:      m.Views,
		Clicks:     m.Clicks,
		RecordedAt: m.RecordedAt,
	}
}
