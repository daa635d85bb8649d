package venue

import (
	"context"
	"strings"

	"github.com/shaiso/Postline/internal/domain"
)

// YouTube — адаптер публикации на YouTube.
type YouTube struct {
	client *Client
}

// NewYouTube создаёт адаптер YouTube.
func NewYouTube(baseURL, apiKey string) *YouTube {
	return &YouTube{client: NewClient(baseURL, apiKey)}
}

// Name возвращает имя площадки.
func (y *YouTube) Name() string { return "youtube" }

// Submit отправляет payload в формате YouTube.
func (y *YouTube) Submit(ctx context.Context, payload domain.PostPayload) error {
	return y.client.Post(ctx, "/videos", y.formatPayload(payload))
}

// formatPayload собирает платформенный запрос: YouTube принимает
// теги списком и требует категорию.
func (y *YouTube) formatPayload(payload domain.PostPayload) map[string]any {
	return map[string]any{
		"title":       payload.Title,
		"description": buildDescription(payload),
		"tags":        payload.Tags,
		"category":    "Education",
		"video_url":   payload.VideoURL,
	}
}

// buildDescription добавляет хэштеги в конец описания.
func buildDescription(payload domain.PostPayload) string {
	if len(payload.Hashtags) == 0 {
		return payload.Description
	}
	return payload.Description + "\n\n" + joinHashtags(payload.Hashtags)
}

// joinHashtags собирает строку вида "#go #scheduling", добавляя
// решётку там, где её нет.
func joinHashtags(hashtags []string) string {
	parts := make([]string, 0, len(hashtags))
	for _, h := range hashtags {
		parts = append(parts, "#"+strings.TrimPrefix(h, "#"))
	}
	return strings.Join(parts, " ")
}
