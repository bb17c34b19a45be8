package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Bucket names a balance snapshot and the minimum confirmations it requires.
type Bucket struct {
	Name string
	Min  int64
}

// Buckets lists the snapshot depths in ascending order.
var Buckets = []Bucket{
	{Name: "confirmations0", Min: 0},
	{Name: "confirmations3", Min: 3},
	{Name: "confirmations6", Min: 6},
}

// BalancePatch carries the buckets a transaction is allowed to update. Nil fields are left untouched.
type BalancePatch struct {
	Confirmations0 *int64
	Confirmations3 *int64
	Confirmations6 *int64
}

// NewBalancePatch sets balance on every bucket whose minimum depth is at most confirmations.
func NewBalancePatch(confirmations, balance int64) BalancePatch {
	var patch BalancePatch
	for _, bucket := range Buckets {
		if confirmations < bucket.Min {
			continue
		}
		value := balance
		switch bucket.Min {
		case 0:
			patch.Confirmations0 = &value
		case 3:
			patch.Confirmations3 = &value
		case 6:
			patch.Confirmations6 = &value
		}
	}
	return patch
}

// FreshBalance is a balance read together with the chain height it was observed at.
type FreshBalance struct {
	Balance        int64
	LastBlockCheck int64
}

// SumValues folds signed values into an exact decimal sum.
func SumValues(values []int64) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromInt(v))
	}
	return sum
}

// SumUnsigned folds unsigned values into an exact decimal sum.
func SumUnsigned(values []uint64) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0))
	}
	return sum
}

// SumDecimals folds partial sums into an exact decimal sum.
func SumDecimals(sums []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sums {
		total = total.Add(s)
	}
	return total
}
