package model

import "strings"

// CoinbasePrevoutHash is the all-zero outpoint hash carried by coinbase inputs.
var CoinbasePrevoutHash = strings.Repeat("0", 64)

// UnconfirmedHeight marks a transaction or output that is not in a block yet.
const UnconfirmedHeight int64 = -1

// Prevout references an output of a previous transaction.
type Prevout struct {
	Hash  string `json:"hash"`
	Index uint32 `json:"index"`
}

// RawInput is a transaction input as reported by the node.
type RawInput struct {
	Prevout Prevout `json:"prevout"`
	Script  string  `json:"script,omitempty"`
}

// Output is a transaction output; resolved inputs reuse it for the output they spend.
type Output struct {
	Value   int64  `json:"value"`
	Address string `json:"address,omitempty"`
	Script  string `json:"script,omitempty"`
}

// RawTransaction is a transaction as reported by the node, inputs not yet resolved.
type RawTransaction struct {
	Hash    string     `json:"hash"`
	Block   int64      `json:"block"`
	Inputs  []RawInput `json:"inputs"`
	Outputs []Output   `json:"outputs"`
}

// IsCoinbase reports whether any input spends the coinbase sentinel outpoint.
func (t RawTransaction) IsCoinbase() bool {
	for _, in := range t.Inputs {
		if in.Prevout.Hash == CoinbasePrevoutHash {
			return true
		}
	}
	return false
}

// ResolvedTransaction is a transaction whose inputs are replaced by the outputs they spend.
type ResolvedTransaction struct {
	Hash          string   `json:"hash"`
	Block         int64    `json:"block"`
	Confirmations int64    `json:"confirmations"`
	Inputs        []Output `json:"inputs"`
	Outputs       []Output `json:"outputs"`
	ValueIn       int64    `json:"valueIn"`
	ValueOut      int64    `json:"valueOut"`
	Fee           int64    `json:"fee"`
}

// ConfirmationsAt returns the depth of the transaction at height; unconfirmed transactions have none.
func (t ResolvedTransaction) ConfirmationsAt(height int64) int64 {
	if t.Block < 0 || height < t.Block {
		return 0
	}
	return height - t.Block
}

// OutputValues lists output values in order.
func OutputValues(outputs []Output) []int64 {
	values := make([]int64, 0, len(outputs))
	for _, out := range outputs {
		values = append(values, out.Value)
	}
	return values
}
