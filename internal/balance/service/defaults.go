package service

const (
	defaultCoinPageSize uint64 = 10_000

	skipStaleWrite = "stale_write"
	skipNotFound   = "not_found"
)
