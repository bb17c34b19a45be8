package service

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	CoinRepository interface {
		CountCoins(ctx context.Context, filter model.CoinFilter) (uint64, error)
		CoinValues(ctx context.Context, filter model.CoinFilter, offset, limit uint64) ([]uint64, error)
	}
	AddressExpander interface {
		Forms(address string) []string
	}
	AccountRepository interface {
		FindByAddress(ctx context.Context, address string) (model.Account, error)
		ApplyTransactionUpdate(ctx context.Context, address string, patch model.BalancePatch, lastBlockCheck int64, tx model.TrackedTx) (model.Account, error)
		ApplyPatch(ctx context.Context, address string, patch model.BalancePatch) (model.Account, error)
		ListOpenAccounts(ctx context.Context, height int64) ([]model.Account, error)
		CloseWindow(ctx context.Context, address string, height int64) error
	}
	TransactionResolver interface {
		Resolve(ctx context.Context, txid string) (*model.ResolvedTransaction, error)
	}
	BalanceSource interface {
		FreshBalance(ctx context.Context, address string) (model.FreshBalance, error)
	}
	BalanceSummer interface {
		SumBalance(ctx context.Context, address string, asOfBlock *int64) (int64, error)
	}
	BalancePublisher interface {
		PublishBalance(ctx context.Context, update model.BalanceUpdate) error
	}
	HeightSource interface {
		GetBlockCount(ctx context.Context) (int64, error)
	}
	NodeCoinSource interface {
		GetBlockCount(ctx context.Context) (int64, error)
		GetCoinsByAddress(ctx context.Context, address string) ([]model.NodeCoin, error)
	}
	AggregatorMetrics interface {
		ObserveTransactionEvent(err error, txs int, started time.Time)
		ObserveBlockEvent(err error, accounts int, started time.Time)
		ObserveSkipped(reason string)
		ObservePublished()
	}
)
