// Package chain resolves transactions against the node one hop back.
package chain

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// TransactionSource fetches raw transactions from a node.
type TransactionSource interface {
	GetTransaction(ctx context.Context, txid string) (*model.RawTransaction, error)
}
