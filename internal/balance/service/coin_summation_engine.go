// Package service holds the balance reconciliation logic.
package service

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/goodnatureofminers/blockinsight7000-balance/pkg/safe"
	"github.com/shopspring/decimal"
)

// CoinSummationEngine sums the coin values of an address across all its encodings.
type CoinSummationEngine struct {
	repo     CoinRepository
	forms    AddressExpander
	chain    model.Chain
	network  model.Network
	pageSize uint64
}

func NewCoinSummationEngine(repo CoinRepository, forms AddressExpander, chain model.Chain, network model.Network) *CoinSummationEngine {
	return &CoinSummationEngine{
		repo:     repo,
		forms:    forms,
		chain:    chain,
		network:  network,
		pageSize: defaultCoinPageSize,
	}
}

// SumBalance returns the unspent total of address, or the total as of block asOfBlock when set.
// Pages are summed one after another and the exact total is converted once.
func (e *CoinSummationEngine) SumBalance(ctx context.Context, address string, asOfBlock *int64) (int64, error) {
	filter := model.CoinFilter{
		Chain:     e.chain,
		Network:   e.network,
		Addresses: e.forms.Forms(address),
		AsOfBlock: asOfBlock,
	}

	count, err := e.repo.CountCoins(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count coins of %s: %w", address, err)
	}

	sums := make([]decimal.Decimal, 0, count/e.pageSize+1)
	for offset := uint64(0); offset < count; offset += e.pageSize {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		values, err := e.repo.CoinValues(ctx, filter, offset, e.pageSize)
		if err != nil {
			return 0, fmt.Errorf("load coins of %s at offset %d: %w", address, offset, err)
		}
		sums = append(sums, model.SumUnsigned(values))
	}

	balance, err := safe.Int64FromDecimal(model.SumDecimals(sums))
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", address, err)
	}
	return balance, nil
}
