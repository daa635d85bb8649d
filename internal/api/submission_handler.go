package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Postline/internal/domain"
	"github.com/shaiso/Postline/internal/repo"
)

// ListSubmissions возвращает список заявок с фильтрацией.
// GET /api/v1/submissions?status=...&venue=...&limit=...&offset=...
//
// При due=true возвращаются только заявки, готовые к доставке
// на текущий момент (фильтры status/venue/offset игнорируются).
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("due") == "true" {
		h.listDueSubmissions(w, r)
		return
	}

	filter := repo.SubmissionFilter{
		Venue:  r.URL.Query().Get("venue"),
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status, ok := domain.ParseSubmissionStatus(statusStr)
		if !ok {
			BadRequest(w, "invalid status")
			return
		}
		filter.Status = status
	}

	subs, err := h.subRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]SubmissionResponse, len(subs))
	for i, s := range subs {
		result[i] = SubmissionFromDomain(s)
	}

	List(w, result, len(result))
}

// listDueSubmissions возвращает заявки, которые dispatcher забрал бы
// на доставку прямо сейчас. Удобно для диагностики отставания очереди.
func (h *Handler) listDueSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subRepo.ListDue(r.Context(), time.Now().UTC(), parseIntQuery(r, "limit", 50))
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]SubmissionResponse, len(subs))
	for i, s := range subs {
		result[i] = SubmissionFromDomain(s)
	}

	List(w, result, len(result))
}

// GetSubmission возвращает заявку по ID.
// GET /api/v1/submissions/{id}
func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid submission id")
		return
	}

	sub, err := h.subRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "submission not found") {
		return
	}

	Success(w, SubmissionFromDomain(*sub))
}

// parseIntQuery парсит числовой query-параметр с дефолтным значением.
func parseIntQuery(r *http.Request, name string, defaultVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
