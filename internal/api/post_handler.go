package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Postline/internal/scheduler"
)

// CreatePost планирует публикацию нового поста.
// POST /api/v1/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Payload.Title == "" {
		BadRequest(w, "payload.title is required")
		return
	}
	if req.Venue == "" {
		BadRequest(w, "venue is required")
		return
	}

	var requestedAt time.Time
	if req.RequestedAt != nil {
		requestedAt = *req.RequestedAt
	}

	post, sub, err := h.scheduler.SchedulePost(r.Context(), req.Payload, req.Venue, requestedAt)
	if err != nil {
		if errors.Is(err, scheduler.ErrUnknownVenue) {
			BadRequest(w, err.Error())
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, ScheduledPostResponse{
		Post:       PostFromDomain(*post),
		Submission: SubmissionFromDomain(*sub),
	})
}

// GetPost возвращает пост по ID.
// GET /api/v1/posts/{id}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid post id")
		return
	}

	post, err := h.postRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "post not found") {
		return
	}

	Success(w, PostFromDomain(*post))
}

// ListPosts возвращает список постов.
// GET /api/v1/posts?limit=...&offset=...
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	posts, err := h.postRepo.List(r.Context(), limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]PostResponse, len(posts))
	for i, p := range posts {
		result[i] = PostFromDomain(p)
	}

	List(w, result, len(result))
}

// ListPostSubmissions возвращает цепочки доставки поста.
// GET /api/v1/posts/{id}/submissions
func (h *Handler) ListPostSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid post id")
		return
	}

	// Проверяем, что пост существует
	_, err = h.postRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "post not found") {
		return
	}

	subs, err := h.subRepo.ListByPost(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]SubmissionResponse, len(subs))
	for i, s := range subs {
		result[i] = SubmissionFromDomain(s)
	}

	List(w, result, len(result))
}

// ScheduleVenue планирует доставку существующего поста на ещё одну площадку.
// POST /api/v1/posts/{id}/submissions
func (h *Handler) ScheduleVenue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid post id")
		return
	}

	var req ScheduleVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Venue == "" {
		BadRequest(w, "venue is required")
		return
	}

	var requestedAt time.Time
	if req.RequestedAt != nil {
		requestedAt = *req.RequestedAt
	}

	sub, err := h.scheduler.ScheduleVenue(r.Context(), id, req.Venue, requestedAt)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrUnknownVenue):
			BadRequest(w, err.Error())
		case errors.Is(err, scheduler.ErrPostNotFound):
			NotFound(w, "post not found")
		default:
			InternalError(w, h.logger, err)
		}
		return
	}

	Created(w, SubmissionFromDomain(*sub))
}
