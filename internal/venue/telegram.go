package venue

import (
	"context"

	"github.com/shaiso/Postline/internal/domain"
)

// Telegram — адаптер публикации в Telegram-канал.
type Telegram struct {
	client *Client
	chatID string
}

// NewTelegram создаёт адаптер Telegram для канала chatID.
func NewTelegram(baseURL, botToken, chatID string) *Telegram {
	return &Telegram{
		client: NewClient(baseURL, botToken),
		chatID: chatID,
	}
}

// Name возвращает имя площадки.
func (t *Telegram) Name() string { return "telegram" }

// Submit отправляет payload в формате Telegram.
func (t *Telegram) Submit(ctx context.Context, payload domain.PostPayload) error {
	return t.client.Post(ctx, "/sendVideo", t.formatPayload(payload))
}

// formatPayload собирает запрос sendVideo: заголовок жирным,
// описание и хэштеги в caption.
func (t *Telegram) formatPayload(payload domain.PostPayload) map[string]any {
	caption := "<b>" + payload.Title + "</b>"
	if payload.Description != "" {
		caption += "\n\n" + payload.Description
	}
	if len(payload.Hashtags) > 0 {
		caption += "\n\n" + joinHashtags(payload.Hashtags)
	}

	return map[string]any{
		"chat_id":    t.chatID,
		"video":      payload.VideoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	}
}
