package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics tracks the notification outbox drain loop.
type OutboxMetrics struct {
	deliveryLag prometheus.Histogram
	backlog     prometheus.Gauge
	processed   *prometheus.CounterVec
}

var (
	outboxMetricsOnce sync.Once
	outboxMetrics     *OutboxMetrics
)

func Outbox() *OutboxMetrics {
	return OutboxWithConfig(Config{})
}

func OutboxWithConfig(cfg Config) *OutboxMetrics {
	outboxMetricsOnce.Do(func() {
		outboxMetrics = newOutboxMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return outboxMetrics
}

func ResetOutboxMetricsForTest() {
	outboxMetricsOnce = sync.Once{}
	outboxMetrics = nil
}

func newOutboxMetrics(registerer prometheus.Registerer, cfg Config) *OutboxMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "mls"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	deliveryLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "mls_notification_delivery_lag_seconds",
			Help: "Lag between outbox insert and delivery to the mailer.",
			Buckets: []float64{
				1,
				5,
				30,
				60,
				300,
				900,
				3600,
			},
			ConstLabels: constLabels,
		},
	)

	backlog := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "mls_notification_backlog_total",
			Help:        "Number of outbox events waiting for delivery.",
			ConstLabels: constLabels,
		},
	)

	processed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "mls_notification_processed_total",
			Help:        "Total outbox events processed by the notifier.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // delivered | failed | skipped
	)

	registerer.MustRegister(
		deliveryLag,
		backlog,
		processed,
	)

	return &OutboxMetrics{
		deliveryLag: deliveryLag,
		backlog:     backlog,
		processed:   processed,
	}
}

func (m *OutboxMetrics) ObserveDeliveryLag(lag time.Duration) {
	if m == nil {
		return
	}
	seconds := lag.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.deliveryLag.Observe(seconds)
}

func (m *OutboxMetrics) SetBacklog(value int) {
	if m == nil {
		return
	}
	m.backlog.Set(float64(value))
}

func (m *OutboxMetrics) IncProcessed(result string) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(result).Inc()
}
