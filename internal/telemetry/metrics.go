package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики планировщика публикаций.
//
// Регистрируются в default registry; /metrics отдаётся через promhttp.
var (
	// SubmissionsDelivered — количество успешно доставленных заявок по площадкам.
	SubmissionsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_submissions_delivered_total",
		Help: "Total submissions delivered successfully, by venue",
	}, []string{"venue"})

	// SubmissionsRetried — количество заявок, отправленных на повторную попытку.
	SubmissionsRetried = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_submissions_retried_total",
		Help: "Total submissions rescheduled for retry, by venue",
	}, []string{"venue"})

	// SubmissionsFailed — количество заявок, завершившихся неудачей.
	SubmissionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_submissions_failed_total",
		Help: "Total submissions that reached FAILED, by venue",
	}, []string{"venue"})

	// TickDuration — длительность одного цикла обработки due-заявок.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "postline_dispatcher_tick_duration_seconds",
		Help:    "Duration of one dispatcher tick",
		Buckets: prometheus.DefBuckets,
	})
)
