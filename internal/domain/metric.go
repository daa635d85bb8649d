package domain

import (
	"time"

	"github.com/google/uuid"
)

// PostMetrics — собранные показатели опубликованного поста.
// Записываются внешним сборщиком; здесь только хранение.
type PostMetrics struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// PostID — ссылка на пост.
	PostID uuid.UUID `json:"post_id"`

	// Views — количество просмотров.
	Views int64 `json:"views"`

	// Clicks — количество переходов.
	Clicks int64 `json:"clicks"`

	// RecordedAt — время записи показателей.
	RecordedAt time.Time `json:"recorded_at"`
}
