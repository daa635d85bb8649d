package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// PostPayload — содержимое поста.
type PostPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	VideoURL    string   `json:"video_url,omitempty"`
}

// PostResponse — пост из API.
type PostResponse struct {
	ID        string      `json:"id"`
	Payload   PostPayload `json:"payload"`
	CreatedAt string      `json:"created_at"`
}

// SubmissionResponse — заявка из API.
type SubmissionResponse struct {
	ID          string `json:"id"`
	PostID      string `json:"post_id"`
	Venue       string `json:"venue"`
	Status      string `json:"status"`
	Attempt     int    `json:"attempt"`
	ScheduledAt string `json:"scheduled_at"`
	LastError   string `json:"last_error,omitempty"`
	UpdatedAt   string `json:"updated_at"`
	CreatedAt   string `json:"created_at"`
}

// ScheduledPostResponse — результат планирования поста.
type ScheduledPostResponse struct {
	Post       PostResponse       `json:"post"`
	Submission SubmissionResponse `json:"submission"`
}

// MetricsResponse — показатели поста из API.
type MetricsResponse struct {
	ID         string `json:"id"`
	PostID     string `json:"post_id"`
	Views      int64  `json:"views"`
	Clicks     int64  `json:"clicks"`
	RecordedAt string `json:"recorded_at"`
}

// --- Request types ---

// CreatePostRequest — планирование поста.
type CreatePostRequest struct {
	Payload     PostPayload `json:"payload"`
	Venue       string      `json:"venue"`
	RequestedAt *string     `json:"requested_at,omitempty"`
}

// ScheduleVenueRequest — доставка на ещё одну площадку.
type ScheduleVenueRequest struct {
	Venue       string  `json:"venue"`
	RequestedAt *string `json:"requested_at,omitempty"`
}

// RecordMetricsRequest — запись показателей.
type RecordMetricsRequest struct {
	Views  int64 `json:"views"`
	Clicks int64 `json:"clicks"`
}

// ListSubmissionsOpts — параметры фильтрации заявок.
type ListSubmissionsOpts struct {
	Status string
	Venue  string
	Limit  int
	Due    bool
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Postline API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Posts ---

// CreatePost планирует публикацию поста.
func (c *Client) CreatePost(req CreatePostRequest) (*ScheduledPostResponse, error) {
	var scheduled ScheduledPostResponse
	err := c.post("/api/v1/posts", req, &scheduled)
	return &scheduled, err
}

// GetPost возвращает пост по ID.
func (c *Client) GetPost(id string) (*PostResponse, error) {
	var post PostResponse
	err := c.get("/api/v1/posts/"+id, &post)
	return &post, err
}

// ListPosts возвращает список постов.
func (c *Client) ListPosts(limit int) ([]PostResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var posts []PostResponse
	err := c.list("/api/v1/posts", params, &posts)
	return posts, err
}

// ListPostSubmissions возвращает цепочки доставки поста.
func (c *Client) ListPostSubmissions(postID string) ([]SubmissionResponse, error) {
	var subs []SubmissionResponse
	err := c.list("/api/v1/posts/"+postID+"/submissions", nil, &subs)
	return subs, err
}

// ScheduleVenue планирует доставку поста на ещё одну площадку.
func (c *Client) ScheduleVenue(postID string, req ScheduleVenueRequest) (*SubmissionResponse, error) {
	var sub SubmissionResponse
	err := c.post("/api/v1/posts/"+postID+"/submissions", req, &sub)
	return &sub, err
}

// --- Submissions ---

// ListSubmissions возвращает заявки с фильтрацией.
func (c *Client) ListSubmissions(opts ListSubmissionsOpts) ([]SubmissionResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Venue != "" {
		params.Set("venue", opts.Venue)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Due {
		params.Set("due", "true")
	}

	var subs []SubmissionResponse
	err := c.list("/api/v1/submissions", params, &subs)
	return subs, err
}

// GetSubmission возвращает заявку по ID.
func (c *Client) GetSubmission(id string) (*SubmissionResponse, error) {
	var sub SubmissionResponse
	err := c.get("/api/v1/submissions/"+id, &sub)
	return &sub, err
}

// --- Analytics ---

// RecordMetrics записывает показатели поста.
func (c *Client) RecordMetrics(postID string, req RecordMetricsRequest) (*MetricsResponse, error) {
	var metrics MetricsResponse
	err := c.post("/api/v1/posts/"+postID+"/analytics", req, &metrics)
	return &metrics, err
}

// ListMetrics возвращает показатели поста.
func (c *Client) ListMetrics(postID string) ([]MetricsResponse, error) {
	var metrics []MetricsResponse
	err := c.list("/api/v1/posts/"+postID+"/analytics", nil, &metrics)
	return metrics, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
