package clickhouse

import (
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

const (
	spendableCondition = `
WHERE chain = ? AND network = ? AND address IN ?
  AND input_block IS NULL`

	asOfBlockCondition = `
WHERE chain = ? AND network = ? AND address IN ?
  AND output_block >= 0 AND output_block <= ?
  AND (input_block IS NULL OR input_block > ?)`
)

// coinCondition renders the WHERE clause selecting the coins of a balance.
// A point-in-time balance skips mempool outputs and counts coins spent after the block.
func coinCondition(filter model.CoinFilter) (string, []any) {
	args := []any{string(filter.Chain), string(filter.Network), filter.Addresses}
	if filter.AsOfBlock == nil {
		return spendableCondition, args
	}
	return asOfBlockCondition, append(args, *filter.AsOfBlock, *filter.AsOfBlock)
}
