package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	consumerDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "consumer",
		Name:      "deliveries_total",
		Help:      "Count of acknowledged deliveries per queue.",
	}, []string{"queue", "status"})

	consumerDeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "consumer",
		Name:      "delivery_duration_seconds",
		Help:      "Time from receipt to acknowledgement.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"queue", "status"})

	consumerReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "consumer",
		Name:      "reconnects_total",
		Help:      "Count of broker reconnect attempts.",
	})
)

// Consumer tracks metrics for the event consumer.
type Consumer struct{}

func NewConsumer() *Consumer {
	return &Consumer{}
}

func (m Consumer) ObserveDelivery(queue string, err error, started time.Time) {
	status := statusOf(err)
	consumerDeliveriesTotal.WithLabelValues(queue, status).Inc()
	consumerDeliveryDuration.WithLabelValues(queue, status).Observe(time.Since(started).Seconds())
}

func (m Consumer) ObserveReconnect() {
	consumerReconnectsTotal.Inc()
}
