package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/jackc/pgx/v5"
)

// FindByAddress returns the stored account, or model.ErrNotFound.
func (r *Repository) FindByAddress(ctx context.Context, address string) (model.Account, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("find_by_address", err, start)
	}()

	const query = `SELECT ` + accountColumns + `
FROM accounts
WHERE address = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, address))
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("account %s: %w", address, model.ErrNotFound)
		return model.Account{}, err
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account %s: %w", address, err)
	}
	return account, nil
}
