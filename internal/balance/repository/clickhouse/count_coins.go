package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

// CountCoins returns how many coins match filter.
func (r *Repository) CountCoins(ctx context.Context, filter model.CoinFilter) (uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("count_coins", filter.Chain, filter.Network, err, start)
	}()

	if len(filter.Addresses) == 0 {
		return 0, nil
	}

	where, args := coinCondition(filter)
	query := `
SELECT count()
FROM balance_coins FINAL` + where

	var count uint64
	if err = r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count coins: %w", err)
	}
	return count, nil
}
