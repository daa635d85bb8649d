package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Client — HTTP-клиент платформенного API.
//
// Общая часть всех адаптеров: сериализация JSON, bearer-авторизация
// и классификация ответа на transient/permanent.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient создаёт клиент площадки.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Post выполняет POST на path с JSON-телом body.
//
// Классификация результата:
//   - ошибка сети / таймаут          → TransientError
//   - 408, 429, 5xx                  → TransientError
//   - остальные 4xx                  → PermanentError
func (c *Client) Post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	httpErr := fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))

	if retryableStatus(resp.StatusCode) {
		return Transient(httpErr)
	}
	return Permanent(httpErr)
}

// retryableStatus возвращает true для кодов, которые имеет смысл
// повторять.
func retryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout:
		return true
	case code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
