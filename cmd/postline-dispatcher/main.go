// Postline Dispatcher — доставляет due-заявки на площадки.
//
// Dispatcher:
//   - Выбирает активный экземпляр через advisory lock в Postgres
//   - Периодически обрабатывает due-заявки (polling + cron-каденция)
//   - Просыпается по событию post.scheduled из RabbitMQ
//
// Запасные экземпляры ждут лидерства и подхватывают работу при
// падении активного.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Postline/internal/config"
	"github.com/shaiso/Postline/internal/dispatcher"
	"github.com/shaiso/Postline/internal/domain"
	"github.com/shaiso/Postline/internal/mq"
	"github.com/shaiso/Postline/internal/repo"
	"github.com/shaiso/Postline/internal/scheduler"
	"github.com/shaiso/Postline/internal/telemetry"
	"github.com/shaiso/Postline/internal/venue"
)

// leaderRetryInterval — как часто запасной экземпляр пробует захватить лидерство.
const leaderRetryInterval = 15 * time.Second

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting postline-dispatcher")

	var cfg config.Dispatcher
	config.MustLoad(&cfg)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Окно публикации
	window, err := domain.NewPostingWindow(cfg.Window.StartHour, cfg.Window.EndHour)
	if err != nil {
		logger.Error("invalid posting window", "error", err)
		os.Exit(1)
	}
	logger.Info("posting window configured", "window", window.String())

	// Репозитории
	postRepo := repo.NewPostRepo(pool)
	subRepo := repo.NewSubmissionRepo(pool)

	// Площадки
	venues := registerVenues(cfg.Venues, logger)

	// RabbitMQ (опционально)
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	if cfg.MQ.Enabled {
		mqConn, err = mq.NewConnection(cfg.MQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
			mqConn = nil
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			publisher = mq.NewPublisher(mqConn, logger)
		}
	}

	sched := scheduler.New(scheduler.Config{
		PostStore:       postRepo,
		SubmissionStore: subRepo,
		Venues:          venues,
		Window:          window,
		Publisher:       publisher,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
		SubmitTimeout:   cfg.SubmitTimeout,
		BatchSize:       cfg.BatchSize,
		ClaimLease:      cfg.ClaimLease,
		Logger:          logger,
	})

	d := dispatcher.New(dispatcher.Config{
		Scheduler:    sched,
		Conn:         mqConn,
		TickInterval: cfg.TickInterval,
		CronExpr:     cfg.TickCron,
		Logger:       logger,
	})

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("DISPATCHER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Лидерство: активен только один dispatcher, claim в хранилище
	// страхует от гонки на границе смены лидера.
	lock := repo.NewLeaderLock(pool, cfg.LeaderKey)
	if !waitForLeadership(ctx, lock, logger) {
		logger.Info("postline-dispatcher stopped before acquiring leadership")
		return
	}
	defer func() {
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer releaseCancel()
		if err := lock.Release(releaseCtx); err != nil {
			logger.Warn("failed to release leader lock", "error", err)
		}
	}()

	// Запускаем dispatcher
	if err := d.Start(ctx); err != nil {
		logger.Error("failed to start dispatcher", "error", err)
		os.Exit(1)
	}

	// Ожидаем сигнал завершения
	<-ctx.Done()

	d.Stop()
	logger.Info("postline-dispatcher stopped")
}

// waitForLeadership блокируется, пока экземпляр не станет лидером
// или не завершится контекст.
func waitForLeadership(ctx context.Context, lock *repo.LeaderLock, logger *slog.Logger) bool {
	for {
		acquired, err := lock.TryAcquire(ctx)
		if err != nil {
			logger.Error("failed to try leader lock", "error", err)
		} else if acquired {
			logger.Info("leadership acquired")
			return true
		} else {
			logger.Debug("standby: leader lock held elsewhere")
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(leaderRetryInterval):
		}
	}
}

// registerVenues регистрирует площадки с заполненными кредами.
func registerVenues(cfg config.Venues, logger *slog.Logger) *venue.Registry {
	venues := venue.NewRegistry()

	if cfg.YouTubeBaseURL != "" && cfg.YouTubeAPIKey != "" {
		venues.Register(venue.NewYouTube(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey))
	}
	if cfg.TwitterBaseURL != "" && cfg.TwitterToken != "" {
		venues.Register(venue.NewTwitter(cfg.TwitterBaseURL, cfg.TwitterToken))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		venues.Register(venue.NewTelegram(cfg.TelegramBaseURL, cfg.TelegramBotToken, cfg.TelegramChatID))
	}

	logger.Info("venues registered", "venues", venues.Names())
	return venues
}
