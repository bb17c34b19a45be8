package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

// ListOpenAccounts returns accounts with tracked transactions last checked below height.
func (r *Repository) ListOpenAccounts(ctx context.Context, height int64) ([]model.Account, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("list_open_accounts", err, start)
	}()

	const query = `SELECT ` + accountColumns + `
FROM accounts
WHERE last_txs <> '{}'::jsonb AND last_block_check < $1
ORDER BY address ASC`

	rows, err := r.db.Query(ctx, query, height)
	if err != nil {
		return nil, fmt.Errorf("query open accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if account, err = scanAccount(rows); err != nil {
			return nil, fmt.Errorf("scan open account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open accounts: %w", err)
	}

	return accounts, nil
}
