package api

import (
	"log/slog"

	"github.com/shaiso/Postline/internal/repo"
	"github.com/shaiso/Postline/internal/scheduler"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	scheduler   *scheduler.Scheduler
	postRepo    *repo.PostRepo
	subRepo     *repo.SubmissionRepo
	metricsRepo *repo.MetricsRepo
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Scheduler   *scheduler.Scheduler
	PostRepo    *repo.PostRepo
	SubRepo     *repo.SubmissionRepo
	MetricsRepo *repo.MetricsRepo
	Logger      *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		scheduler:   cfg.Scheduler,
		postRepo:    cfg.PostRepo,
		subRepo:     cfg.SubRepo,
		metricsRepo: cfg.MetricsRepo,
		logger:      cfg.Logger,
	}
}
