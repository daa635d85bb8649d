package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Postline/internal/domain"
	"github.com/shaiso/Postline/internal/mq"
	"github.com/shaiso/Postline/internal/repo"
	"github.com/shaiso/Postline/internal/telemetry"
	"github.com/shaiso/Postline/internal/venue"
)

// Default configuration values.
const (
	defaultMaxRetries    = 3
	defaultRetryBackoff  = 15 * time.Minute
	defaultSubmitTimeout = 30 * time.Second
	defaultBatchSize     = 50
	defaultClaimLease    = 5 * time.Minute
)

// PostStore — операции над постами, нужные планировщику.
type PostStore interface {
	CreateWithSubmission(ctx context.Context, post *domain.Post, sub *domain.Submission) error
	GetPayload(ctx context.Context, id uuid.UUID) (domain.PostPayload, error)
}

// SubmissionStore — операции над submissions, нужные планировщику.
type SubmissionStore interface {
	Create(ctx context.Context, sub *domain.Submission) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.Submission, error)
	Update(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, lastError string) error
	RecordRetry(ctx context.Context, currentID uuid.UUID, lastError string, next *domain.Submission) error
	RequeueStale(ctx context.Context, olderThan time.Time) (int, error)
}

// Scheduler реализует жизненный цикл публикации.
//
// Две обязанности:
//   - SchedulePost — принять payload, разрешить время публикации
//     через окно и атомарно создать Post + первую Submission;
//   - ProcessDueSubmissions — захватить due-заявки и доставить
//     каждую на её площадку, переводя цепочку по state machine:
//     успех → SUBMITTED, постоянная ошибка → FAILED, временная
//     ошибка → retry-строка, пока не исчерпан бюджет попыток.
//
// Scheduler не владеет циклом опроса — его вызывает dispatcher.
type Scheduler struct {
	posts  PostStore
	subs   SubmissionStore
	venues *venue.Registry
	window domain.PostingWindow

	publisher *mq.Publisher

	maxRetries    int
	retryBackoff  time.Duration
	submitTimeout time.Duration
	batchSize     int
	claimLease    time.Duration

	clock  func() time.Time
	logger *slog.Logger
}

// Config — конфигурация Scheduler.
type Config struct {
	// Stores
	PostStore       PostStore
	SubmissionStore SubmissionStore

	// Venues — реестр площадок.
	Venues *venue.Registry

	// Window — окно публикации.
	Window domain.PostingWindow

	// Publisher — публикация событий в MQ (опционально).
	Publisher *mq.Publisher

	// MaxRetries — бюджет повторных попыток на цепочку (default: 3).
	MaxRetries int

	// RetryBackoff — базовая задержка перед retry (default: 15m).
	RetryBackoff time.Duration

	// SubmitTimeout — таймаут одной доставки (default: 30s).
	SubmitTimeout time.Duration

	// BatchSize — количество заявок за один цикл (default: 50).
	BatchSize int

	// ClaimLease — срок аренды claim'а: заявка, зависшая в
	// IN_PROGRESS дольше этого срока, возвращается в очередь
	// (default: 5m).
	ClaimLease time.Duration

	// Clock — источник времени; в тестах подменяется (default: time.Now).
	Clock func() time.Time

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}

	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	claimLease := cfg.ClaimLease
	if claimLease <= 0 {
		claimLease = defaultClaimLease
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	venues := cfg.Venues
	if venues == nil {
		venues = venue.NewRegistry()
	}

	return &Scheduler{
		posts:         cfg.PostStore,
		subs:          cfg.SubmissionStore,
		venues:        venues,
		window:        cfg.Window,
		publisher:     cfg.Publisher,
		maxRetries:    maxRetries,
		retryBackoff:  retryBackoff,
		submitTimeout: submitTimeout,
		batchSize:     batchSize,
		claimLease:    claimLease,
		clock:         clock,
		logger:        logger,
	}
}

// SchedulePost планирует публикацию нового поста на площадку.
//
// Порядок строгий: сначала проверка площадки, потом персистентность —
// неизвестная площадка не оставляет следов в хранилище. Время
// публикации разрешается через окно: запрошенный момент внутри окна
// сохраняется как есть, вне окна — сдвигается на ближайшее начало
// окна. Нулевой requestedAt означает «как можно раньше».
func (s *Scheduler) SchedulePost(ctx context.Context, payload domain.PostPayload, venueName string, requestedAt time.Time) (*domain.Post, *domain.Submission, error) {
	if !s.venues.Has(venueName) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownVenue, venueName)
	}

	now := s.clock().UTC()
	if requestedAt.IsZero() {
		requestedAt = now
	}

	scheduledAt := s.window.NextAvailable(requestedAt.UTC())

	post := domain.NewPost(payload, now)
	sub := domain.NewSubmission(post.ID, venueName, scheduledAt, now)

	if err := s.posts.CreateWithSubmission(ctx, post, sub); err != nil {
		return nil, nil, fmt.Errorf("create post with submission: %w", err)
	}

	s.logger.Info("post scheduled",
		"post_id", post.ID,
		"submission_id", sub.ID,
		"venue", venueName,
		"scheduled_at", scheduledAt,
	)

	s.publishScheduled(ctx, sub)

	return post, sub, nil
}

// ScheduleVenue добавляет цепочку доставки на ещё одну площадку
// для уже сохранённого поста.
func (s *Scheduler) ScheduleVenue(ctx context.Context, postID uuid.UUID, venueName string, requestedAt time.Time) (*domain.Submission, error) {
	if !s.venues.Has(venueName) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVenue, venueName)
	}

	// Пост должен существовать до создания цепочки.
	if _, err := s.posts.GetPayload(ctx, postID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPostNotFound, postID)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	now := s.clock().UTC()
	if requestedAt.IsZero() {
		requestedAt = now
	}

	scheduledAt := s.window.NextAvailable(requestedAt.UTC())
	sub := domain.NewSubmission(postID, venueName, scheduledAt, now)

	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	s.logger.Info("venue scheduled",
		"post_id", postID,
		"submission_id", sub.ID,
		"venue", venueName,
		"scheduled_at", scheduledAt,
	)

	s.publishScheduled(ctx, sub)

	return sub, nil
}

// ProcessDueSubmissions захватывает due-заявки и доставляет каждую.
//
// Захват атомарный (claim в IN_PROGRESS), поэтому конкурирующие
// экземпляры не доставят одну заявку дважды. Возвращает количество
// обработанных заявок; ошибка отдельной доставки не прерывает цикл.
func (s *Scheduler) ProcessDueSubmissions(ctx context.Context) (int, error) {
	now := s.clock().UTC()

	// Возвращаем в очередь заявки, чей dispatcher упал между claim
	// и записью исхода.
	requeued, err := s.subs.RequeueStale(ctx, now.Add(-s.claimLease))
	if err != nil {
		s.logger.Warn("failed to requeue stale claims", "error", err)
	} else if requeued > 0 {
		s.logger.Warn("requeued stale claims", "count", requeued)
	}

	claimed, err := s.subs.ClaimDue(ctx, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim due submissions: %w", err)
	}

	if len(claimed) == 0 {
		return 0, nil
	}

	s.logger.Debug("claimed due submissions", "count", len(claimed))

	for i := range claimed {
		sub := &claimed[i]

		if err := s.deliver(ctx, sub); err != nil {
			s.logger.Error("failed to process submission",
				"submission_id", sub.ID,
				"post_id", sub.PostID,
				"venue", sub.Venue,
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return i + 1, ctx.Err()
		default:
		}
	}

	return len(claimed), nil
}

// deliver доставляет одну захваченную заявку и переводит её статус.
func (s *Scheduler) deliver(ctx context.Context, sub *domain.Submission) error {
	logger := telemetry.WithVenue(
		telemetry.WithSubmissionID(s.logger, sub.ID.String()),
		sub.Venue,
	)

	v, err := s.venues.Get(sub.Venue)
	if err != nil {
		// Площадка пропала из реестра — retry не поможет.
		return s.fail(ctx, sub, err.Error(), logger)
	}

	payload, err := s.posts.GetPayload(ctx, sub.PostID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return s.fail(ctx, sub, fmt.Sprintf("post %s not found", sub.PostID), logger)
		}
		// Инфраструктурная ошибка хранилища — считаем временной.
		return s.retryOrFail(ctx, sub, fmt.Sprintf("load payload: %s", err), logger)
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	submitErr := v.Submit(submitCtx, payload)
	cancel()

	if submitErr == nil {
		if err := s.subs.Update(ctx, sub.ID, domain.StatusSubmitted, ""); err != nil {
			return fmt.Errorf("update to submitted: %w", err)
		}

		logger.Info("submission delivered", "attempt", sub.Attempt)
		telemetry.SubmissionsDelivered.WithLabelValues(sub.Venue).Inc()

		sub.Status = domain.StatusSubmitted
		s.publishCompleted(ctx, sub, "")
		return nil
	}

	if venue.IsPermanent(submitErr) {
		return s.fail(ctx, sub, submitErr.Error(), logger)
	}

	return s.retryOrFail(ctx, sub, submitErr.Error(), logger)
}

// fail переводит заявку в FAILED, минуя бюджет повторов.
func (s *Scheduler) fail(ctx context.Context, sub *domain.Submission, errMsg string, logger *slog.Logger) error {
	if err := s.subs.Update(ctx, sub.ID, domain.StatusFailed, errMsg); err != nil {
		return fmt.Errorf("update to failed: %w", err)
	}

	logger.Warn("submission failed permanently",
		"attempt", sub.Attempt,
		"error", errMsg,
	)
	telemetry.SubmissionsFailed.WithLabelValues(sub.Venue).Inc()

	sub.Status = domain.StatusFailed
	sub.LastError = errMsg
	s.publishCompleted(ctx, sub, errMsg)
	return nil
}

// retryOrFail обрабатывает временную ошибку: помечает текущую строку
// SUPERSEDED и добавляет retry-строку в цепочку либо закрывает её,
// если бюджет попыток исчерпан.
//
// Backoff отсчитывается от момента обработки, а не от исходного
// scheduled_at; получившееся время прогоняется через окно.
func (s *Scheduler) retryOrFail(ctx context.Context, sub *domain.Submission, errMsg string, logger *slog.Logger) error {
	if sub.NextAttempt() > s.maxRetries {
		if err := s.subs.Update(ctx, sub.ID, domain.StatusFailed, errMsg); err != nil {
			return fmt.Errorf("update to failed: %w", err)
		}

		logger.Warn("submission failed, retry budget exhausted",
			"attempt", sub.Attempt,
			"max_retries", s.maxRetries,
			"error", errMsg,
		)
		telemetry.SubmissionsFailed.WithLabelValues(sub.Venue).Inc()

		sub.Status = domain.StatusFailed
		sub.LastError = errMsg
		s.publishCompleted(ctx, sub, errMsg)
		return nil
	}

	now := s.clock().UTC()
	nextDue := s.window.NextAvailable(now.Add(s.retryBackoff))
	next := domain.NewRetrySubmission(sub, nextDue, now)

	if err := s.subs.RecordRetry(ctx, sub.ID, errMsg, next); err != nil {
		return fmt.Errorf("record retry: %w", err)
	}

	logger.Info("submission scheduled for retry",
		"attempt", sub.Attempt,
		"next_attempt", next.Attempt,
		"next_scheduled_at", nextDue,
		"error", errMsg,
	)
	telemetry.SubmissionsRetried.WithLabelValues(sub.Venue).Inc()

	s.publishScheduled(ctx, next)
	return nil
}

// publishScheduled публикует событие post.scheduled.
func (s *Scheduler) publishScheduled(ctx context.Context, sub *domain.Submission) {
	if s.publisher == nil {
		return
	}

	payload := mq.PostScheduledPayload{
		PostID:       sub.PostID,
		SubmissionID: sub.ID,
		Venue:        sub.Venue,
		ScheduledAt:  sub.ScheduledAt,
	}

	if err := s.publisher.PublishPostScheduled(ctx, payload); err != nil {
		// Не фатально: dispatcher подхватит заявку через polling.
		s.logger.Warn("failed to publish post.scheduled",
			"submission_id", sub.ID,
			"error", err,
		)
	}
}

// publishCompleted публикует событие submission.completed.
func (s *Scheduler) publishCompleted(ctx context.Context, sub *domain.Submission, errMsg string) {
	if s.publisher == nil {
		return
	}

	payload := mq.SubmissionCompletedPayload{
		SubmissionID: sub.ID,
		PostID:       sub.PostID,
		Venue:        sub.Venue,
		Status:       string(sub.Status),
		Attempt:      sub.Attempt,
		Error:        errMsg,
	}

	if err := s.publisher.PublishSubmissionCompleted(ctx, payload); err != nil {
		s.logger.Warn("failed to publish submission.completed",
			"submission_id", sub.ID,
			"error", err,
		)
	}
}
