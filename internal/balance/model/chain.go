package model

// Chain identifies the coin a deployment reconciles.
type Chain string

// Network identifies the chain network.
type Network string

var (
	BTC Chain = "BTC"
	LTC Chain = "LTC"
)

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
	Signet  Network = "signet"
)
