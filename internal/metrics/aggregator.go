package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregatorEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "aggregator",
		Name:      "events_total",
		Help:      "Count of handled transaction and block events.",
	}, []string{"event", "chain", "network", "status"})

	aggregatorEventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "aggregator",
		Name:      "event_duration_seconds",
		Help:      "Duration of handling one event.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"event", "chain", "network", "status"})

	aggregatorEventSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "aggregator",
		Name:      "event_size",
		Help:      "Transactions per transaction event and open accounts per block event.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"event", "chain", "network"})

	aggregatorSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "aggregator",
		Name:      "skipped_total",
		Help:      "Count of transactions skipped while reconciling.",
	}, []string{"chain", "network", "reason"})

	aggregatorPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "aggregator",
		Name:      "published_total",
		Help:      "Count of published balance updates.",
	}, []string{"chain", "network"})
)

// Aggregator tracks metrics for the confirmation aggregator.
type Aggregator struct {
	chain   string
	network string
}

func NewAggregator(chain model.Chain, network model.Network) *Aggregator {
	return &Aggregator{chain: chainLabel(chain), network: networkLabel(network)}
}

func (m Aggregator) ObserveTransactionEvent(err error, txs int, started time.Time) {
	m.observeEvent("transaction", err, txs, started)
}

func (m Aggregator) ObserveBlockEvent(err error, accounts int, started time.Time) {
	m.observeEvent("block", err, accounts, started)
}

func (m Aggregator) ObserveSkipped(reason string) {
	aggregatorSkippedTotal.WithLabelValues(m.chain, m.network, reason).Inc()
}

func (m Aggregator) ObservePublished() {
	aggregatorPublishedTotal.WithLabelValues(m.chain, m.network).Inc()
}

func (m Aggregator) observeEvent(event string, err error, size int, started time.Time) {
	status := statusOf(err)
	aggregatorEventsTotal.WithLabelValues(event, m.chain, m.network, status).Inc()
	aggregatorEventDuration.WithLabelValues(event, m.chain, m.network, status).Observe(time.Since(started).Seconds())
	aggregatorEventSize.WithLabelValues(event, m.chain, m.network).Observe(float64(size))
}
