// Package postgres stores account snapshots and their confirmation windows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `address, confirmations0, confirmations3, confirmations6, last_block_check, last_txs`

type Repository struct {
	db      DB
	metrics Metrics
	close   func()
}

func NewRepository(ctx context.Context, dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Repository{db: pool, metrics: metrics, close: pool.Close}, nil
}

// Close releases the pool.
func (r *Repository) Close() {
	if r.close != nil {
		r.close()
	}
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var (
		account model.Account
		lastTxs map[string]int64
	)
	if err := row.Scan(
		&account.Address,
		&account.Balances.Confirmations0,
		&account.Balances.Confirmations3,
		&account.Balances.Confirmations6,
		&account.LastBlockCheck,
		&lastTxs,
	); err != nil {
		return model.Account{}, err
	}
	account.LastTxs = trackedFromMap(lastTxs)
	return account, nil
}

// trackedFromMap orders the stored {txid: height} window by height, then txid.
func trackedFromMap(m map[string]int64) model.TrackedTxs {
	txs := make(model.TrackedTxs, 0, len(m))
	for txid, height := range m {
		txs = append(txs, model.TrackedTx{TxID: txid, BlockHeight: height})
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].BlockHeight != txs[j].BlockHeight {
			return txs[i].BlockHeight < txs[j].BlockHeight
		}
		return txs[i].TxID < txs[j].TxID
	})
	return txs
}
