package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE
//go:generate mockgen -destination=mocks_driver_test.go -package=$GOPACKAGE github.com/ClickHouse/clickhouse-go/v2/lib/driver Row,Rows

type (
	// Metrics records repository call outcomes.
	Metrics interface {
		Observe(operation string, chain model.Chain, network model.Network, err error, started time.Time)
	}

	// Conn is the part of clickhouse.Conn the repository uses.
	Conn interface {
		Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
		QueryRow(ctx context.Context, query string, args ...any) driver.Row
		Close() error
	}
)
