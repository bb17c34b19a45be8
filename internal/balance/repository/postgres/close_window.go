package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

// CloseWindow records height as checked and prunes the stored window in place.
// Entries and check heights written concurrently by the transaction path are preserved.
func (r *Repository) CloseWindow(ctx context.Context, address string, height int64) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("close_window", err, start)
	}()

	const query = `
UPDATE accounts SET
	last_block_check = GREATEST(last_block_check, $2),
	last_txs = COALESCE(
		(SELECT jsonb_object_agg(e.txid, e.height)
		 FROM jsonb_each(last_txs) AS e(txid, height)
		 WHERE $2 - e.height::bigint <= $3),
		'{}'::jsonb)
WHERE address = $1`

	tag, err := r.db.Exec(ctx, query, address, height, int64(model.ConfirmationWindow))
	if err != nil {
		err = fmt.Errorf("close window for %s: %w", address, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("close window for %s: %w", address, model.ErrNotFound)
		return err
	}
	return nil
}
