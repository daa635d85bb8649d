package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Posts
	mux.Handle("POST /api/v1/posts", chain(http.HandlerFunc(h.CreatePost)))
	mux.Handle("GET /api/v1/posts", chain(http.HandlerFunc(h.ListPosts)))
	mux.Handle("GET /api/v1/posts/{id}", chain(http.HandlerFunc(h.GetPost)))
	mux.Handle("GET /api/v1/posts/{id}/submissions", chain(http.HandlerFunc(h.ListPostSubmissions)))
	mux.Handle("POST /api/v1/posts/{id}/submissions", chain(http.HandlerFunc(h.ScheduleVenue)))

	// Submissions
	mux.Handle("GET /api/v1/submissions", chain(http.HandlerFunc(h.ListSubmissions)))
	mux.Handle("GET /api/v1/submissions/{id}", chain(http.HandlerFunc(h.GetSubmission)))

	// Analytics
	mux.Handle("POST /api/v1/posts/{id}/analytics", chain(http.HandlerFunc(h.RecordMetrics)))
	mux.Handle("GET /api/v1/posts/{id}/analytics", chain(http.HandlerFunc(h.ListMetrics)))
}
