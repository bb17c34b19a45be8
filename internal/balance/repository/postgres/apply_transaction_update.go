package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/jackc/pgx/v5"
)

// ApplyTransactionUpdate upserts the patched buckets, advances last_block_check and adds tx to the
// window, provided the stored last_block_check is not ahead of lastBlockCheck.
// A newer stored check yields model.ErrStaleWrite and leaves the row untouched.
func (r *Repository) ApplyTransactionUpdate(
	ctx context.Context,
	address string,
	patch model.BalancePatch,
	lastBlockCheck int64,
	tx model.TrackedTx,
) (model.Account, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("apply_transaction_update", err, start)
	}()

	const query = `
INSERT INTO accounts AS a (` + accountColumns + `)
VALUES (
	$1,
	COALESCE($2::bigint, 0),
	COALESCE($3::bigint, 0),
	COALESCE($4::bigint, 0),
	$5,
	jsonb_build_object($6::text, $7::bigint)
)
ON CONFLICT (address) DO UPDATE SET
	confirmations0 = COALESCE($2::bigint, a.confirmations0),
	confirmations3 = COALESCE($3::bigint, a.confirmations3),
	confirmations6 = COALESCE($4::bigint, a.confirmations6),
	last_block_check = $5,
	last_txs = a.last_txs || jsonb_build_object($6::text, $7::bigint)
WHERE a.last_block_check <= $5
RETURNING ` + accountColumns

	account, err := scanAccount(r.db.QueryRow(ctx, query,
		address,
		patch.Confirmations0,
		patch.Confirmations3,
		patch.Confirmations6,
		lastBlockCheck,
		tx.TxID,
		tx.BlockHeight,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("account %s at %d: %w", address, lastBlockCheck, model.ErrStaleWrite)
		return model.Account{}, err
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("apply transaction update for %s: %w", address, err)
	}
	return account, nil
}
