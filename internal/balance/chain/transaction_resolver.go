package chain

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/goodnatureofminers/blockinsight7000-balance/pkg/safe"
)

// TransactionResolver replaces transaction inputs with the outputs they spend.
type TransactionResolver struct {
	source TransactionSource
}

// NewTransactionResolver constructs a TransactionResolver over source.
func NewTransactionResolver(source TransactionSource) *TransactionResolver {
	return &TransactionResolver{source: source}
}

// Resolve fetches txid and every previous transaction its inputs spend, one hop back.
// A coinbase transaction gets a single synthetic input worth its outputs, so its fee is zero.
// Any missing transaction or output yields model.ErrNotFound and no partial result.
func (r *TransactionResolver) Resolve(ctx context.Context, txid string) (*model.ResolvedTransaction, error) {
	raw, err := r.source.GetTransaction(ctx, txid)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction %s: %w", txid, err)
	}

	outSum := model.SumValues(model.OutputValues(raw.Outputs))
	valueOut, err := safe.Int64FromDecimal(outSum)
	if err != nil {
		return nil, fmt.Errorf("sum outputs of %s: %w", txid, err)
	}

	var inputs []model.Output
	if raw.IsCoinbase() {
		inputs = []model.Output{{Value: valueOut, Script: firstInputScript(raw.Inputs)}}
	} else {
		inputs, err = r.resolveInputs(ctx, raw)
		if err != nil {
			return nil, err
		}
	}

	inSum := model.SumValues(model.OutputValues(inputs))
	valueIn, err := safe.Int64FromDecimal(inSum)
	if err != nil {
		return nil, fmt.Errorf("sum inputs of %s: %w", txid, err)
	}
	fee, err := safe.Int64FromDecimal(inSum.Sub(outSum))
	if err != nil {
		return nil, fmt.Errorf("fee of %s: %w", txid, err)
	}

	return &model.ResolvedTransaction{
		Hash:     raw.Hash,
		Block:    raw.Block,
		Inputs:   inputs,
		Outputs:  raw.Outputs,
		ValueIn:  valueIn,
		ValueOut: valueOut,
		Fee:      fee,
	}, nil
}

func (r *TransactionResolver) resolveInputs(ctx context.Context, raw *model.RawTransaction) ([]model.Output, error) {
	inputs := make([]model.Output, 0, len(raw.Inputs))
	for i, in := range raw.Inputs {
		prev, err := r.source.GetTransaction(ctx, in.Prevout.Hash)
		if err != nil {
			return nil, fmt.Errorf("fetch input %d of %s: %w", i, raw.Hash, err)
		}
		if int(in.Prevout.Index) >= len(prev.Outputs) {
			return nil, fmt.Errorf("input %d of %s spends %s:%d: %w", i, raw.Hash, in.Prevout.Hash, in.Prevout.Index, model.ErrNotFound)
		}
		inputs = append(inputs, prev.Outputs[in.Prevout.Index])
	}
	return inputs, nil
}

func firstInputScript(inputs []model.RawInput) string {
	if len(inputs) == 0 {
		return ""
	}
	return inputs[0].Script
}
