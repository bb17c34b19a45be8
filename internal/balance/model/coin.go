package model

// Coin is a transaction output attributed to an address; a nil InputBlock means unspent.
type Coin struct {
	Chain       Chain
	Network     Network
	Address     string
	TxID        string
	Index       uint32
	Value       uint64
	OutputBlock int64
	InputBlock  *int64
}

// CoinFilter selects the coins that make up a balance.
type CoinFilter struct {
	Chain     Chain
	Network   Network
	Addresses []string
	// AsOfBlock switches to a point-in-time balance when set.
	AsOfBlock *int64
}

// NodeCoin is an unspent output as reported by the node's address index.
type NodeCoin struct {
	Hash   string `json:"hash"`
	Index  uint32 `json:"index"`
	Value  int64  `json:"value"`
	Height int64  `json:"height"`
}
