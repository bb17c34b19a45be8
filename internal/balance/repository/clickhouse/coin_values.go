package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

// CoinValues returns one page of coin values matching filter in (txid, output_index) order.
func (r *Repository) CoinValues(ctx context.Context, filter model.CoinFilter, offset, limit uint64) ([]uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("coin_values", filter.Chain, filter.Network, err, start)
	}()

	if len(filter.Addresses) == 0 || limit == 0 {
		return nil, nil
	}

	where, args := coinCondition(filter)
	query := `
SELECT value
FROM balance_coins FINAL` + where + `
ORDER BY txid ASC, output_index ASC
LIMIT ? OFFSET ?`

	rows, err := r.conn.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("query coin values: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	var values []uint64
	for rows.Next() {
		var value uint64
		if err = rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan coin value: %w", err)
		}
		values = append(values, value)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coin values: %w", err)
	}

	return values, nil
}
