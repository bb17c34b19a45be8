package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE
//go:generate mockgen -destination=mocks_pgx_test.go -package=$GOPACKAGE github.com/jackc/pgx/v5 Row,Rows

type (
	// Metrics records repository call outcomes.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}

	// DB is the part of pgxpool.Pool the repository uses.
	DB interface {
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	}
)
