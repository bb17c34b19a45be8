package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/jackc/pgx/v5"
)

// ApplyPatch overwrites the patched buckets of an existing account unconditionally.
func (r *Repository) ApplyPatch(ctx context.Context, address string, patch model.BalancePatch) (model.Account, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("apply_patch", err, start)
	}()

	const query = `
UPDATE accounts SET
	confirmations0 = COALESCE($2::bigint, confirmations0),
	confirmations3 = COALESCE($3::bigint, confirmations3),
	confirmations6 = COALESCE($4::bigint, confirmations6)
WHERE address = $1
RETURNING ` + accountColumns

	account, err := scanAccount(r.db.QueryRow(ctx, query,
		address,
		patch.Confirmations0,
		patch.Confirmations3,
		patch.Confirmations6,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("account %s: %w", address, model.ErrNotFound)
		return model.Account{}, err
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("apply patch for %s: %w", address, err)
	}
	return account, nil
}
