package metrics

import (
	"errors"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postgresRepositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "postgres_repository",
		Name:      "operations_total",
		Help:      "Count of account store operations.",
	}, []string{"operation", "status"})
	postgresRepositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "postgres_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of account store operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
)

// PostgresRepository tracks metrics for account repository operations.
type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// Observe records an operation; a lost conditional write or a missing row is its own status.
func (m PostgresRepository) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	switch {
	case errors.Is(err, model.ErrStaleWrite):
		status = "stale"
	case errors.Is(err, model.ErrNotFound):
		status = "not_found"
	}
	postgresRepositoryRequestsTotal.WithLabelValues(operation, status).Inc()
	postgresRepositoryRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
