// Postline API — HTTP-поверхность планировщика публикаций.
//
// Принимает запросы на планирование постов, отдаёт статус цепочек
// доставки и показатели опубликованных постов.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Postline/internal/api"
	"github.com/shaiso/Postline/internal/config"
	"github.com/shaiso/Postline/internal/domain"
	"github.com/shaiso/Postline/internal/mq"
	"github.com/shaiso/Postline/internal/repo"
	"github.com/shaiso/Postline/internal/scheduler"
	"github.com/shaiso/Postline/internal/telemetry"
	"github.com/shaiso/Postline/internal/venue"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postline_api_http_requests_total",
		Help: "Total HTTP requests handled by postline_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting postline-api")

	var cfg config.API
	config.MustLoad(&cfg)

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background(), cfg.DB.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Окно публикации
	window, err := domain.NewPostingWindow(cfg.Window.StartHour, cfg.Window.EndHour)
	if err != nil {
		logger.Error("invalid posting window", "error", err)
		os.Exit(1)
	}

	// Создаём репозитории
	postRepo := repo.NewPostRepo(pool)
	subRepo := repo.NewSubmissionRepo(pool)
	metricsRepo := repo.NewMetricsRepo(pool)

	// RabbitMQ (опционально)
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		mqConn, err := mq.NewConnection(cfg.MQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, dispatcher will rely on polling", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(context.Background(), mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			publisher = mq.NewPublisher(mqConn, logger)
		}
	}

	// Реестр площадок нужен API только для проверки имени до
	// персистентности; из API доставка не выполняется.
	venues := registerVenues(logger)

	sched := scheduler.New(scheduler.Config{
		PostStore:       postRepo,
		SubmissionStore: subRepo,
		Venues:          venues,
		Window:          window,
		Publisher:       publisher,
		Logger:          logger,
	})

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		Scheduler:   sched,
		PostRepo:    postRepo,
		SubRepo:     subRepo,
		MetricsRepo: metricsRepo,
		Logger:      logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":" + cfg.Port

	// HTTP сервер с graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// registerVenues регистрирует все известные площадки.
//
// API не доставляет — учётные данные не нужны, достаточно имён,
// поэтому адаптеры создаются с пустыми кредами.
func registerVenues(logger *slog.Logger) *venue.Registry {
	venues := venue.NewRegistry()
	venues.Register(venue.NewYouTube("", ""))
	venues.Register(venue.NewTwitter("", ""))
	venues.Register(venue.NewTelegram("", "", ""))
	logger.Info("venues registered", "venues", venues.Names())
	return venues
}
