package model

// TransactionEvent announces transactions that touch an address.
type TransactionEvent struct {
	Address string   `json:"address"`
	Txs     []string `json:"txs"`
}

// BlockEvent announces a new chain height.
type BlockEvent struct {
	Block int64 `json:"block"`
}

// BalanceUpdate is published after an account snapshot was written.
type BalanceUpdate struct {
	Address  string              `json:"address"`
	Balances Balances            `json:"balances"`
	Tx       ResolvedTransaction `json:"tx"`
}
