package venue

import (
	"context"
	"strings"

	"github.com/shaiso/Postline/internal/domain"
)

// Twitter — адаптер публикации в Twitter/X.
type Twitter struct {
	client *Client
}

// NewTwitter создаёт адаптер Twitter.
func NewTwitter(baseURL, bearerToken string) *Twitter {
	return &Twitter{client: NewClient(baseURL, bearerToken)}
}

// Name возвращает имя площадки.
func (t *Twitter) Name() string { return "twitter" }

// Submit отправляет payload в формате Twitter.
func (t *Twitter) Submit(ctx context.Context, payload domain.PostPayload) error {
	return t.client.Post(ctx, "/tweets", t.formatPayload(payload))
}

// formatPayload собирает единый текст твита: заголовок, описание
// и хэштеги, пустые части пропускаются.
func (t *Twitter) formatPayload(payload domain.PostPayload) map[string]any {
	parts := []string{payload.Title, payload.Description, joinHashtags(payload.Hashtags)}

	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return map[string]any{
		"text":      strings.Join(nonEmpty, "\n"),
		"tags":      payload.Tags,
		"video_url": payload.VideoURL,
	}
}
