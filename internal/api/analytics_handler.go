package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Postline/internal/domain"
)

// RecordMetrics записывает показатели опубликованного поста.
// POST /api/v1/posts/{id}/analytics
func (h *Handler) RecordMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid post id")
		return
	}

	var req RecordMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Views < 0 || req.Clicks < 0 {
		BadRequest(w, "views and clicks must be non-negative")
		return
	}

	// Проверяем, что пост существует
	_, err = h.postRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "post not found") {
		return
	}

	metrics := &domain.PostMetrics{
		ID:         uuid.New(),
		PostID:     id,
		Views:      req.Views,
		Clicks:     req.Clicks,
		RecordedAt: time.Now().UTC(),
	}

	if err := h.metricsRepo.Record(r.Context(), metrics); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, MetricsFromDomain(*metrics))
}

// ListMetrics возвращает записанные показатели поста, новые первыми.
// GET /api/v1/posts/{id}/analytics
func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid post id")
		return
	}

	_, err = h.postRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "post not found") {
		return
	}

	metrics, err := h.metricsRepo.ListByPost(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]MetricsResponse, len(metrics))
	for i, m := range metrics {
		result[i] = MetricsFromDomain(m)
	}

	List(w, result, len(result))
}
