package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shaiso/Postline/internal/mq"
	"github.com/shaiso/Postline/internal/scheduler"
	"github.com/shaiso/Postline/internal/telemetry"
)

// Default configuration values.
const (
	defaultTickInterval = 30 * time.Second
	defaultPrefetch     = 5
)

// Dispatcher — цикл доставки due-заявок.
//
// Dispatcher — stateless компонент системы, который:
//   - Периодически запускает обработку due-заявок (polling)
//   - Просыпается по событию post.scheduled из RabbitMQ, чтобы не
//     ждать следующего tick для свежезапланированной работы
//   - Делегирует захват и доставку scheduler.Scheduler
//
// Несколько экземпляров безопасны благодаря атомарному claim в
// хранилище, но обычно активен один — leader election на уровне
// бинаря через advisory lock.
type Dispatcher struct {
	sched *scheduler.Scheduler

	// MQ (опционально: без него остаётся только polling)
	conn     *mq.Connection
	consumer *mq.Consumer

	tickInterval time.Duration
	cronExpr     string

	wake chan struct{}

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Dispatcher.
type Config struct {
	// Scheduler — обработчик due-заявок.
	Scheduler *scheduler.Scheduler

	// Conn — соединение с RabbitMQ (опционально).
	Conn *mq.Connection

	// TickInterval — интервал polling (default: 30s).
	// Игнорируется, если задан CronExpr.
	TickInterval time.Duration

	// CronExpr — cron-выражение для каденции tick вместо фиксированного
	// интервала (например "*/5 9-16 * * *" — каждые 5 минут в окне).
	CronExpr string

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Dispatcher.
func New(cfg Config) *Dispatcher {
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		sched:        cfg.Scheduler,
		conn:         cfg.Conn,
		tickInterval: tickInterval,
		cronExpr:     cfg.CronExpr,
		wake:         make(chan struct{}, 1),
		logger:       logger,
	}
}

// Start запускает Dispatcher.
//
// Запускает:
//   - Consumer для posts.scheduled (если есть MQ)
//   - Tick-цикл (интервальный или по cron-выражению)
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancelFunc = cancel

	d.logger.Info("starting dispatcher",
		"tick_interval", d.tickInterval,
		"cron_expr", d.cronExpr,
	)

	if d.cronExpr != "" {
		if err := ValidateCronExpr(d.cronExpr); err != nil {
			cancel()
			return err
		}
	}

	if d.conn != nil {
		d.consumer = mq.NewConsumer(d.conn, d.logger, mq.ConsumerConfig{
			Queue:    string(mq.QueuePostsScheduled),
			Handler:  d.handlePostScheduled,
			Prefetch: defaultPrefetch,
		})

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("post.scheduled consumer error", "error", err)
			}
		}()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.tickLoop(ctx)
	}()

	d.logger.Info("dispatcher started")
	return nil
}

// Stop останавливает Dispatcher.
func (d *Dispatcher) Stop() {
	d.stoppedMu.Lock()
	d.stopped = true
	d.stoppedMu.Unlock()

	d.logger.Info("stopping dispatcher...")

	if d.cancelFunc != nil {
		d.cancelFunc()
	}

	if d.consumer != nil {
		d.consumer.Stop()
	}

	d.wg.Wait()

	d.logger.Info("dispatcher stopped")
}

// IsStopped проверяет, остановлен ли Dispatcher.
func (d *Dispatcher) IsStopped() bool {
	d.stoppedMu.RLock()
	defer d.stoppedMu.RUnlock()
	return d.stopped
}

// tickLoop — основной цикл обработки.
func (d *Dispatcher) tickLoop(ctx context.Context) {
	// Первый tick сразу при старте (подхватываем заявки,
	// ставшие due пока dispatcher был выключен)
	d.tick(ctx)

	for {
		wait := d.nextTickIn(time.Now())

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			d.tick(ctx)
		case <-d.wake:
			d.logger.Debug("woken up by post.scheduled event")
			d.tick(ctx)
		}
	}
}

// nextTickIn возвращает время ожидания до следующего tick.
func (d *Dispatcher) nextTickIn(now time.Time) time.Duration {
	if d.cronExpr == "" {
		return d.tickInterval
	}

	next, err := NextCronTick(d.cronExpr, now)
	if err != nil {
		// Выражение проверено на старте; на всякий случай fallback
		d.logger.Error("invalid cron expression, falling back to interval", "error", err)
		return d.tickInterval
	}
	return next.Sub(now)
}

// tick выполняет один цикл обработки due-заявок.
func (d *Dispatcher) tick(ctx context.Context) {
	timer := prometheus.NewTimer(telemetry.TickDuration)
	defer timer.ObserveDuration()

	processed, err := d.sched.ProcessDueSubmissions(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.logger.Error("tick failed", "error", err)
		}
		return
	}

	if processed > 0 {
		d.logger.Info("tick processed submissions", "count", processed)
	}
}

// handlePostScheduled обрабатывает событие post.scheduled.
//
// Событие — только сигнал проснуться: источник истины о due-заявках
// всегда хранилище, поэтому достаточно толкнуть tick-цикл.
func (d *Dispatcher) handlePostScheduled(_ context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.PostScheduledPayload](&delivery.Message)
	if err != nil {
		d.logger.Error("failed to parse post.scheduled payload", "error", err)
		return err
	}

	d.logger.Debug("received post.scheduled event",
		"post_id", payload.PostID,
		"submission_id", payload.SubmissionID,
		"venue", payload.Venue,
		"scheduled_at", payload.ScheduledAt,
	)

	select {
	case d.wake <- struct{}{}:
	default:
		// Tick уже запрошен
	}

	return nil
}
