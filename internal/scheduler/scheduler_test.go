package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Postline/internal/domain"
	"github.com/shaiso/Postline/internal/repo"
	"github.com/shaiso/Postline/internal/venue"
)

// --- In-memory фейки хранилища ---

// memStore реализует PostStore и SubmissionStore в памяти.
// Семантика claim, переходов статусов и уникальности активной строки
// на (post, venue) повторяет контракт репозиториев и схемы.
type memStore struct {
	mu       sync.Mutex
	payloads map[uuid.UUID]domain.PostPayload
	subs     []domain.Submission
}

func newMemStore() *memStore {
	return &memStore{payloads: make(map[uuid.UUID]domain.PostPayload)}
}

func (m *memStore) CreateWithSubmission(_ context.Context, post *domain.Post, sub *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkActiveChain(sub); err != nil {
		return err
	}
	m.payloads[post.ID] = post.Payload
	m.subs = append(m.subs, *sub)
	return nil
}

// checkActiveChain повторяет частичный уникальный индекс схемы:
// не более одной активной строки на (post, venue).
func (m *memStore) checkActiveChain(sub *domain.Submission) error {
	for i := range m.subs {
		existing := &m.subs[i]
		if existing.PostID == sub.PostID && existing.Venue == sub.Venue && !existing.Status.IsTerminal() {
			return repo.ErrAlreadyExists
		}
	}
	return nil
}

func (m *memStore) GetPayload(_ context.Context, id uuid.UUID) (domain.PostPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.payloads[id]
	if !ok {
		return domain.PostPayload{}, repo.ErrNotFound
	}
	return payload, nil
}

func (m *memStore) Create(_ context.Context, sub *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkActiveChain(sub); err != nil {
		return err
	}
	m.subs = append(m.subs, *sub)
	return nil
}

func (m *memStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*domain.Submission
	for i := range m.subs {
		if m.subs[i].IsDue(now) {
			due = append(due, &m.subs[i])
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].ScheduledAt.Equal(due[j].ScheduledAt) {
			return due[i].ScheduledAt.Before(due[j].ScheduledAt)
		}
		return due[i].ID.String() < due[j].ID.String()
	})

	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]domain.Submission, 0, len(due))
	for _, sub := range due {
		sub.Status = domain.StatusInProgress
		sub.UpdatedAt = now
		claimed = append(claimed, *sub)
	}
	return claimed, nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, status domain.SubmissionStatus, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.subs {
		if m.subs[i].ID == id {
			if !m.subs[i].Status.CanTransitionTo(status) {
				return repo.ErrInvalidState
			}
			m.subs[i].Status = status
			m.subs[i].LastError = lastError
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memStore) RecordRetry(_ context.Context, currentID uuid.UUID, lastError string, next *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.subs {
		if m.subs[i].ID == currentID {
			if m.subs[i].Status.IsTerminal() {
				return repo.ErrInvalidState
			}
			m.subs[i].Status = domain.StatusSuperseded
			m.subs[i].LastError = lastError
			if err := m.checkActiveChain(next); err != nil {
				return err
			}
			m.subs = append(m.subs, *next)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memStore) RequeueStale(_ context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requeued := 0
	for i := range m.subs {
		if m.subs[i].Status == domain.StatusInProgress && m.subs[i].UpdatedAt.Before(olderThan) {
			m.subs[i].Status = domain.StatusRetryScheduled
			requeued++
		}
	}
	return requeued, nil
}

// chain возвращает все строки цепочки (post, venue), по attempt.
func (m *memStore) chain(postID uuid.UUID, venueName string) []domain.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Submission
	for _, sub := range m.subs {
		if sub.PostID == postID && sub.Venue == venueName {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attempt < out[j].Attempt })
	return out
}

// --- Фейк площадки ---

type fakeVenue struct {
	name string

	mu       sync.Mutex
	calls    int
	payloads []domain.PostPayload
	submitFn func(attempt int) error
}

func (f *fakeVenue) Name() string { return f.name }

func (f *fakeVenue) Submit(_ context.Context, payload domain.PostPayload) error {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.payloads = append(f.payloads, payload)
	fn := f.submitFn
	f.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(call)
}

func (f *fakeVenue) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- Тестовая сборка ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newTestScheduler(t *testing.T, store *memStore, v *fakeVenue, clock *testClock) *Scheduler {
	t.Helper()

	window, err := domain.NewPostingWindow(9, 17)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry := venue.NewRegistry()
	registry.Register(v)

	return New(Config{
		PostStore:       store,
		SubmissionStore: store,
		Venues:          registry,
		Window:          window,
		Clock:           clock.Now,
	})
}

func mustSchedule(t *testing.T, s *Scheduler, venueName string, requestedAt time.Time) (*domain.Post, *domain.Submission) {
	t.Helper()

	payload := domain.PostPayload{Title: "Go generics", Description: "deep dive"}
	post, sub, err := s.SchedulePost(context.Background(), payload, venueName, requestedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return post, sub
}

// --- SchedulePost ---

func TestSchedulePost_InsideWindow(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	requested := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	post, sub := mustSchedule(t, s, "youtube", requested)

	// Внутри окна — время не сдвигается
	if !sub.ScheduledAt.Equal(requested) {
		t.Errorf("expected scheduled_at %v, got %v", requested, sub.ScheduledAt)
	}
	if sub.Status != domain.StatusScheduled {
		t.Errorf("expected SCHEDULED, got %s", sub.Status)
	}
	if sub.Attempt != 0 {
		t.Errorf("expected attempt 0, got %d", sub.Attempt)
	}
	if sub.PostID != post.ID {
		t.Error("submission should reference the post")
	}
}

func TestSchedulePost_BeforeWindow(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	// Запрошено в 6:00 — сдвиг на открытие окна в тот же день
	_, sub := mustSchedule(t, s, "youtube", time.Time{})

	want := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if !sub.ScheduledAt.Equal(want) {
		t.Errorf("expected scheduled_at %v, got %v", want, sub.ScheduledAt)
	}
}

func TestSchedulePost_AfterWindow(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	// Запрошено после закрытия — сдвиг на открытие следующего дня
	_, sub := mustSchedule(t, s, "youtube", time.Time{})

	want := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	if !sub.ScheduledAt.Equal(want) {
		t.Errorf("expected scheduled_at %v, got %v", want, sub.ScheduledAt)
	}
}

func TestSchedulePost_UnknownVenue(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	_, _, err := s.SchedulePost(context.Background(), domain.PostPayload{Title: "x"}, "myspace", time.Time{})
	if !errors.Is(err, ErrUnknownVenue) {
		t.Fatalf("expected ErrUnknownVenue, got %v", err)
	}

	// Ничего не должно быть сохранено
	if len(store.payloads) != 0 || len(store.subs) != 0 {
		t.Error("store should remain empty after rejected venue")
	}
}

func TestSchedulePost_NormalizesPayload(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	payload := domain.PostPayload{
		Title: "  Go generics  ",
		Tags:  []string{" go ", "", "generics"},
	}
	post, _, err := s.SchedulePost(context.Background(), payload, "youtube", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if post.Payload.Title != "Go generics" {
		t.Errorf("title should be trimmed, got %q", post.Payload.Title)
	}
	if len(post.Payload.Tags) != 2 {
		t.Errorf("empty tags should be dropped, got %v", post.Payload.Tags)
	}
}

func TestScheduleVenue_PostNotFound(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	_, err := s.ScheduleVenue(context.Background(), uuid.New(), "youtube", time.Time{})
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestScheduleVenue_SecondChain(t *testing.T) {
	store := newMemStore()
	yt := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, yt, clock)
	s.venues.Register(&fakeVenue{name: "twitter"})

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	sub, err := s.ScheduleVenue(context.Background(), post.ID, "twitter", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Venue != "twitter" || sub.Attempt != 0 {
		t.Errorf("unexpected submission: %+v", sub)
	}
	if len(store.subs) != 2 {
		t.Errorf("expected 2 submissions, got %d", len(store.subs))
	}
}

// --- ProcessDueSubmissions ---

func TestProcessDue_Success(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	processed, err := s.ProcessDueSubmissions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected 1 processed, got %d", processed)
	}

	chain := store.chain(post.ID, "youtube")
	if len(chain) != 1 {
		t.Fatalf("expected 1 row in chain, got %d", len(chain))
	}
	if chain[0].Status != domain.StatusSubmitted {
		t.Errorf("expected SUBMITTED, got %s", chain[0].Status)
	}
	if v.callCount() != 1 {
		t.Errorf("expected 1 venue call, got %d", v.callCount())
	}
}

func TestProcessDue_NotDueYet(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	// Окно откроется в 9:00, сейчас 6:00 — заявка не due
	mustSchedule(t, s, "youtube", time.Time{})

	processed, err := s.ProcessDueSubmissions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 0 {
		t.Errorf("expected 0 processed, got %d", processed)
	}
	if v.callCount() != 0 {
		t.Errorf("venue should not be called, got %d calls", v.callCount())
	}
}

func TestProcessDue_PermanentFailure(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{
		name:     "youtube",
		submitFn: func(int) error { return venue.Permanent(errors.New("HTTP 401: bad token")) },
	}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Постоянная ошибка — FAILED сразу, без retry-строк
	chain := store.chain(post.ID, "youtube")
	if len(chain) != 1 {
		t.Fatalf("expected 1 row, got %d", len(chain))
	}
	if chain[0].Status != domain.StatusFailed {
		t.Errorf("expected FAILED, got %s", chain[0].Status)
	}
	if chain[0].LastError == "" {
		t.Error("last error should be recorded")
	}
	if v.callCount() != 1 {
		t.Errorf("expected exactly 1 venue call, got %d", v.callCount())
	}
}

func TestProcessDue_TransientRetryChain(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{
		name:     "youtube",
		submitFn: func(int) error { return venue.Transient(errors.New("HTTP 503: overloaded")) },
	}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	// Гоним цепочку до исчерпания бюджета: после каждой попытки
	// передвигаем часы на время следующей due-заявки.
	for i := 0; i < 4; i++ {
		if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
			t.Fatalf("unexpected error on round %d: %v", i, err)
		}

		chain := store.chain(post.ID, "youtube")
		last := chain[len(chain)-1]
		if !last.Status.IsTerminal() {
			clock.Set(last.ScheduledAt)
		}
	}

	chain := store.chain(post.ID, "youtube")
	if len(chain) != 4 {
		t.Fatalf("expected 4 rows (attempt 0..3), got %d", len(chain))
	}

	// Все строки кроме последней — SUPERSEDED с записанной ошибкой
	for i := 0; i < 3; i++ {
		if chain[i].Status != domain.StatusSuperseded {
			t.Errorf("row %d: expected SUPERSEDED, got %s", i, chain[i].Status)
		}
		if chain[i].LastError == "" {
			t.Errorf("row %d: last error should be recorded", i)
		}
		if chain[i].Attempt != i {
			t.Errorf("row %d: expected attempt %d, got %d", i, i, chain[i].Attempt)
		}
	}

	last := chain[3]
	if last.Status != domain.StatusFailed {
		t.Errorf("expected final row FAILED, got %s", last.Status)
	}
	if last.Attempt != 3 {
		t.Errorf("expected final attempt 3, got %d", last.Attempt)
	}
	if v.callCount() != 4 {
		t.Errorf("expected 4 venue calls, got %d", v.callCount())
	}
}

func TestProcessDue_SupersededRowNotReclaimed(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{
		name:     "youtube",
		submitFn: func(int) error { return venue.Transient(errors.New("HTTP 503: overloaded")) },
	}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.callCount() != 1 {
		t.Fatalf("expected 1 venue call, got %d", v.callCount())
	}

	// Retry-строка due только через backoff; перезапущенная строка
	// не должна выбираться ни на одном последующем тике.
	for i := 0; i < 3; i++ {
		processed, err := s.ProcessDueSubmissions(context.Background())
		if err != nil {
			t.Fatalf("unexpected error on tick %d: %v", i, err)
		}
		if processed != 0 {
			t.Errorf("tick %d: expected 0 processed, got %d", i, processed)
		}
	}

	if v.callCount() != 1 {
		t.Errorf("superseded row redelivered: expected 1 venue call, got %d", v.callCount())
	}
	chain := store.chain(post.ID, "youtube")
	if len(chain) != 2 {
		t.Errorf("expected 2 rows (attempt 0 superseded, attempt 1 waiting), got %d", len(chain))
	}
	if chain[0].Status != domain.StatusSuperseded {
		t.Errorf("expected attempt 0 SUPERSEDED, got %s", chain[0].Status)
	}
	if chain[1].Status != domain.StatusRetryScheduled {
		t.Errorf("expected attempt 1 RETRY_SCHEDULED, got %s", chain[1].Status)
	}
}

func TestProcessDue_StaleClaimRequeued(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := &testClock{now: start}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	// Упавший dispatcher: заявка захвачена, исход не записан
	if _, err := store.ClaimDue(context.Background(), start, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// До истечения аренды заявка остаётся за прежним владельцем
	clock.Set(start.Add(time.Minute))
	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.callCount() != 0 {
		t.Fatalf("claim still leased, expected 0 venue calls, got %d", v.callCount())
	}

	// После истечения — возврат в очередь и доставка
	clock.Set(start.Add(10 * time.Minute))
	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.callCount() != 1 {
		t.Errorf("expected stale claim redelivered, got %d venue calls", v.callCount())
	}

	chain := store.chain(post.ID, "youtube")
	if len(chain) != 1 || chain[0].Status != domain.StatusSubmitted {
		t.Errorf("expected single SUBMITTED row, got %+v", chain)
	}
}

func TestProcessDue_RetryBackoffThroughWindow(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{
		name:     "youtube",
		submitFn: func(int) error { return venue.Transient(errors.New("timeout")) },
	}
	// 16:50 — окно [9, 17) вот-вот закроется; backoff 15m выводит за край
	clock := &testClock{now: time.Date(2025, 6, 1, 16, 50, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chain := store.chain(post.ID, "youtube")
	if len(chain) != 2 {
		t.Fatalf("expected retry row appended, got %d rows", len(chain))
	}

	// 16:50 + 15m = 17:05 — вне окна, переносится на открытие завтра
	want := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	if !chain[1].ScheduledAt.Equal(want) {
		t.Errorf("expected retry due %v, got %v", want, chain[1].ScheduledAt)
	}
	if chain[1].Status != domain.StatusRetryScheduled {
		t.Errorf("expected RETRY_SCHEDULED, got %s", chain[1].Status)
	}
}

func TestProcessDue_BackoffFromProcessingInstant(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{
		name:     "youtube",
		submitFn: func(int) error { return venue.Transient(errors.New("timeout")) },
	}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	// Обработка происходит сильно позже исходного scheduled_at
	processedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	clock.Set(processedAt)

	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chain := store.chain(post.ID, "youtube")
	want := processedAt.Add(15 * time.Minute)
	if !chain[1].ScheduledAt.Equal(want) {
		t.Errorf("backoff should count from processing time: expected %v, got %v", want, chain[1].ScheduledAt)
	}
}

func TestProcessDue_OrderedByScheduledAt(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	// Планируем в обратном порядке: у "early" более раннее время
	if _, _, err := s.SchedulePost(context.Background(), domain.PostPayload{Title: "late"}, "youtube", time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := s.SchedulePost(context.Background(), domain.PostPayload{Title: "early"}, "youtube", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.payloads) != 2 || v.payloads[0].Title != "early" || v.payloads[1].Title != "late" {
		titles := make([]string, 0, len(v.payloads))
		for _, p := range v.payloads {
			titles = append(titles, p.Title)
		}
		t.Errorf("expected delivery order [early late], got %v", titles)
	}
}

func TestProcessDue_ConcurrentDispatchersNoDoubleDelivery(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}

	const n = 20
	s1 := newTestScheduler(t, store, v, clock)
	for i := 0; i < n; i++ {
		payload := domain.PostPayload{Title: fmt.Sprintf("post-%d", i)}
		if _, _, err := s1.SchedulePost(context.Background(), payload, "youtube", time.Time{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Второй экземпляр поверх того же хранилища
	s2 := newTestScheduler(t, store, v, clock)

	var wg sync.WaitGroup
	for _, s := range []*Scheduler{s1, s2} {
		wg.Add(1)
		go func(s *Scheduler) {
			defer wg.Done()
			if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(s)
	}
	wg.Wait()

	// Каждая заявка доставлена ровно один раз
	if v.callCount() != n {
		t.Errorf("expected %d deliveries, got %d", n, v.callCount())
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, sub := range store.subs {
		if sub.Status != domain.StatusSubmitted {
			t.Errorf("submission %s: expected SUBMITTED, got %s", sub.ID, sub.Status)
		}
	}
}

func TestProcessDue_DeletedPostFailsChain(t *testing.T) {
	store := newMemStore()
	v := &fakeVenue{name: "youtube"}
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, v, clock)

	post, _ := mustSchedule(t, s, "youtube", time.Time{})

	// Пост исчез из хранилища до доставки
	store.mu.Lock()
	delete(store.payloads, post.ID)
	store.mu.Unlock()

	if _, err := s.ProcessDueSubmissions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chain := store.chain(post.ID, "youtube")
	if chain[0].Status != domain.StatusFailed {
		t.Errorf("expected FAILED for missing post, got %s", chain[0].Status)
	}
	if v.callCount() != 0 {
		t.Error("venue should not be called for missing post")
	}
}

// --- Config defaults ---

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})

	if s.maxRetries != defaultMaxRetries {
		t.Errorf("expected default max retries %d, got %d", defaultMaxRetries, s.maxRetries)
	}
	if s.retryBackoff != defaultRetryBackoff {
		t.Errorf("expected default backoff %v, got %v", defaultRetryBackoff, s.retryBackoff)
	}
	if s.submitTimeout != defaultSubmitTimeout {
		t.Errorf("expected default submit timeout %v, got %v", defaultSubmitTimeout, s.submitTimeout)
	}
	if s.batchSize != defaultBatchSize {
		t.Errorf("expected default batch size %d, got %d", defaultBatchSize, s.batchSize)
	}
	if s.claimLease != defaultClaimLease {
		t.Errorf("expected default claim lease %v, got %v", defaultClaimLease, s.claimLease)
	}
	if s.clock == nil || s.logger == nil || s.venues == nil {
		t.Error("clock, logger and venues should be initialized")
	}
}

func TestNew_CustomMaxRetries(t *testing.T) {
	s := New(Config{MaxRetries: 1, RetryBackoff: time.Minute})

	if s.maxRetries != 1 {
		t.Errorf("expected max retries 1, got %d", s.maxRetries)
	}
	if s.retryBackoff != time.Minute {
		t.Errorf("expected backoff 1m, got %v", s.retryBackoff)
	}
}
