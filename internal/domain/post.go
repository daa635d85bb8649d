package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostPayload — нормализованное содержимое поста.
//
// Payload формируется вышестоящим конвейером (генерация сценария,
// рендеринг видео) и сохраняется как непрозрачный JSON. После
// сохранения payload никогда не изменяется.
type PostPayload struct {
	// Title — заголовок поста.
	Title string `json:"title"`

	// Description — описание/текст поста.
	Description string `json:"description"`

	// Tags — список тегов (без решёток).
	Tags []string `json:"tags,omitempty"`

	// Hashtags — список хэштегов для площадок с текстовой лентой.
	Hashtags []string `json:"hashtags,omitempty"`

	// VideoURL — ссылка на отрендеренный ролик (опционально).
	VideoURL string `json:"video_url,omitempty"`
}

// Normalize возвращает копию payload с обрезанными пробелами
// и без пустых тегов/хэштегов.
func (p PostPayload) Normalize() PostPayload {
	return PostPayload{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Tags:        normalizeList(p.Tags),
		Hashtags:    normalizeList(p.Hashtags),
		VideoURL:    strings.TrimSpace(p.VideoURL),
	}
}

func normalizeList(values []string) []string {
	var normalized []string
	for _, v := range values {
		cleaned := strings.TrimSpace(v)
		if cleaned == "" {
			continue
		}
		normalized = append(normalized, cleaned)
	}
	return normalized
}

// Post — сохранённый пост с неизменяемым payload.
//
// Post создаётся один раз при планировании и далее только читается.
// Submissions ссылаются на Post по ID; обратных ссылок нет.
type Post struct {
	// ID — уникальный идентификатор поста.
	ID uuid.UUID `json:"id"`

	// Payload — нормализованное содержимое.
	Payload PostPayload `json:"payload"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// NewPost создаёт Post с нормализованным payload.
func NewPost(payload PostPayload, now time.Time) *Post {
	return &Post{
		ID:        uuid.New(),
		Payload:   payload.Normalize(),
		CreatedAt: now.UTC(),
	}
}
