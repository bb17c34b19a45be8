// Package model defines domain models for balance reconciliation.
package model

// ConfirmationWindow is the depth after which a transaction stops being tracked.
const ConfirmationWindow = 6

// Balances holds balance snapshots per confirmation depth, in atomic units.
type Balances struct {
	Confirmations0 int64 `json:"confirmations0"`
	Confirmations3 int64 `json:"confirmations3"`
	Confirmations6 int64 `json:"confirmations6"`
}

// Account is the reconciliation state of a single address.
type Account struct {
	Address        string
	Balances       Balances
	LastBlockCheck int64
	LastTxs        TrackedTxs
}

// TrackedTx is a transaction still inside the confirmation window of an account.
type TrackedTx struct {
	TxID        string `json:"txid"`
	BlockHeight int64  `json:"blockHeight"`
}

// TrackedTxs is the set of transactions observed for an account, keyed by txid.
type TrackedTxs []TrackedTx

// Contains reports whether txid is tracked.
func (t TrackedTxs) Contains(txid string) bool {
	for _, tx := range t {
		if tx.TxID == txid {
			return true
		}
	}
	return false
}

// Milestones returns the confirmed entries that reach exactly 3 or 6 confirmations at height.
func (t TrackedTxs) Milestones(height int64) TrackedTxs {
	var crossed TrackedTxs
	for _, tx := range t {
		if tx.BlockHeight >= 0 && isMilestone(height-tx.BlockHeight) {
			crossed = append(crossed, tx)
		}
	}
	return crossed
}

// Unseen returns txids that are not tracked yet, preserving input order and dropping repeats.
func (t TrackedTxs) Unseen(txids []string) []string {
	seen := make(map[string]struct{}, len(txids))
	fresh := make([]string, 0, len(txids))
	for _, txid := range txids {
		if _, dup := seen[txid]; dup || t.Contains(txid) {
			continue
		}
		seen[txid] = struct{}{}
		fresh = append(fresh, txid)
	}
	return fresh
}

func isMilestone(depth int64) bool {
	for _, bucket := range Buckets {
		if bucket.Min > 0 && depth == bucket.Min {
			return true
		}
	}
	return false
}
