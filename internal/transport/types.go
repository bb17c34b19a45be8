package transport

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	AccountReader interface {
		FindByAddress(ctx context.Context, address string) (model.Account, error)
	}
	BalanceSummer interface {
		SumBalance(ctx context.Context, address string, asOfBlock *int64) (int64, error)
	}
	HealthChecker interface {
		Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error)
	}
)
