// Package metrics holds the Prometheus collectors of the balance services.
package metrics

import "github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"

const unknown = "unknown"

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func chainLabel(chain model.Chain) string {
	if chain == "" {
		return unknown
	}
	return string(chain)
}

func networkLabel(network model.Network) string {
	if network == "" {
		return unknown
	}
	return string(network)
}
