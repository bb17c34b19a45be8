package service

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/goodnatureofminers/blockinsight7000-balance/pkg/safe"
)

// StoreBalanceSource reads the balance from the coin store and the height from the node.
type StoreBalanceSource struct {
	summer  BalanceSummer
	heights HeightSource
}

func NewStoreBalanceSource(summer BalanceSummer, heights HeightSource) *StoreBalanceSource {
	return &StoreBalanceSource{summer: summer, heights: heights}
}

// FreshBalance sums the current balance first, so the reported height is never behind it.
func (s *StoreBalanceSource) FreshBalance(ctx context.Context, address string) (model.FreshBalance, error) {
	balance, err := s.summer.SumBalance(ctx, address, nil)
	if err != nil {
		return model.FreshBalance{}, err
	}
	height, err := s.heights.GetBlockCount(ctx)
	if err != nil {
		return model.FreshBalance{}, fmt.Errorf("fresh balance height: %w", err)
	}
	return model.FreshBalance{Balance: balance, LastBlockCheck: height}, nil
}

// NodeBalanceSource asks the node's address index for unspent coins.
type NodeBalanceSource struct {
	node NodeCoinSource
}

func NewNodeBalanceSource(node NodeCoinSource) *NodeBalanceSource {
	return &NodeBalanceSource{node: node}
}

func (s *NodeBalanceSource) FreshBalance(ctx context.Context, address string) (model.FreshBalance, error) {
	coins, err := s.node.GetCoinsByAddress(ctx, address)
	if err != nil {
		return model.FreshBalance{}, err
	}
	values := make([]uint64, 0, len(coins))
	for _, c := range coins {
		value, err := safe.Uint64(c.Value)
		if err != nil {
			return model.FreshBalance{}, fmt.Errorf("coin %s:%d of %s: %w", c.Hash, c.Index, address, err)
		}
		values = append(values, value)
	}
	balance, err := safe.Int64FromDecimal(model.SumUnsigned(values))
	if err != nil {
		return model.FreshBalance{}, fmt.Errorf("balance of %s: %w", address, err)
	}

	height, err := s.node.GetBlockCount(ctx)
	if err != nil {
		return model.FreshBalance{}, fmt.Errorf("fresh balance height: %w", err)
	}
	return model.FreshBalance{Balance: balance, LastBlockCheck: height}, nil
}
