package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	btcrpc "github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/bitcoin"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/chain"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/consumer"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/repository/clickhouse"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/repository/postgres"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/service"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/pkg/btcd/rpcclient"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	balanceSourceStore = "store"
	balanceSourceNode  = "node"
)

type config struct {
	RabbitURL       string        `long:"rabbit-url" env:"BALANCE_PROCESSOR_RABBIT_URL" description:"RabbitMQ URL" default:"amqp://localhost:5672"`
	ServiceName     string        `long:"service-name" env:"BALANCE_PROCESSOR_SERVICE_NAME" description:"prefix of queues and routing keys" default:"app_bitcoin"`
	DeclareTopology bool          `long:"declare-topology" env:"BALANCE_PROCESSOR_DECLARE_TOPOLOGY" description:"declare exchange, queues and bindings on connect"`
	Prefetch        int           `long:"prefetch" env:"BALANCE_PROCESSOR_PREFETCH" description:"unacknowledged deliveries per queue" default:"2"`
	ReconnectDelay  time.Duration `long:"reconnect-delay" env:"BALANCE_PROCESSOR_RECONNECT_DELAY" description:"pause before reconnecting to the broker" default:"5s"`
	PostgresDSN     string        `long:"postgres-dsn" env:"BALANCE_PROCESSOR_POSTGRES_DSN" description:"account store DSN" required:"true"`
	ClickhouseDSN   string        `long:"clickhouse-dsn" env:"BALANCE_PROCESSOR_CLICKHOUSE_DSN" description:"coin store DSN, required for the store balance source"`
	BalanceSource   string        `long:"balance-source" env:"BALANCE_PROCESSOR_BALANCE_SOURCE" description:"fresh balance source" choice:"store" choice:"node" default:"store"`
	Chain           model.Chain   `long:"chain" env:"BALANCE_PROCESSOR_CHAIN" description:"chain label of stored coins" default:"BTC"`
	Network         model.Network `long:"network" env:"BALANCE_PROCESSOR_NETWORK" description:"network name" required:"true"`
	RPCURL          string        `long:"rpc-url" env:"BALANCE_PROCESSOR_RPC_URL" description:"node RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser         string        `long:"rpc-user" env:"BALANCE_PROCESSOR_RPC_USER" description:"node RPC username"`
	RPCPassword     string        `long:"rpc-password" env:"BALANCE_PROCESSOR_RPC_PASSWORD" description:"node RPC password"`
	RPCRateLimit    int           `long:"rpc-rate-limit" env:"BALANCE_PROCESSOR_RPC_RATE_LIMIT" description:"node RPC calls per second, 0 disables" default:"0"`
	ZMQAddr         string        `long:"zmq-addr" env:"BALANCE_PROCESSOR_ZMQ_ADDR" description:"node ZMQ endpoint publishing hashblock"`
	MetricsAddr     string        `long:"metrics-addr" env:"BALANCE_PROCESSOR_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	LogLevel        string        `long:"log-level" env:"BALANCE_PROCESSOR_LOG_LEVEL" description:"log level" default:"info"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.BalanceSource == balanceSourceStore && cfg.ClickhouseDSN == "" {
		logger.Fatal("ClickHouse DSN is required for the store balance source")
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("balance processor failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	logger = logger.With(zap.String("chain", string(cfg.Chain)), zap.String("network", string(cfg.Network)))
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	accounts, err := postgres.NewRepository(ctx, cfg.PostgresDSN, metrics.NewPostgresRepository())
	if err != nil {
		return fmt.Errorf("init account repository: %w", err)
	}
	defer accounts.Close()

	rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return fmt.Errorf("init node rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()
	decoder, err := bitcoin.NewScriptDecoder(cfg.Network)
	if err != nil {
		return err
	}
	node := bitcoin.NewNodeClient(
		rpcclient.NewObservedClient(rpcClient, metrics.NewRPCClient(cfg.Chain, cfg.Network)),
		decoder,
		newLimiter(cfg.RPCRateLimit),
		logger,
	)

	var balances service.BalanceSource
	switch cfg.BalanceSource {
	case balanceSourceNode:
		balances = service.NewNodeBalanceSource(node)
	default:
		coins, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init coin repository: %w", err)
		}
		defer func() {
			_ = coins.Close()
		}()
		params, err := bitcoin.ChainParams(cfg.Network)
		if err != nil {
			return err
		}
		engine := service.NewCoinSummationEngine(coins, bitcoin.NewAddressForms(params), cfg.Chain, cfg.Network)
		balances = service.NewStoreBalanceSource(engine, node)
	}

	topology := consumer.Topology{Service: cfg.ServiceName}
	publisher := consumer.NewPublisher(topology)
	aggregator := service.NewConfirmationAggregator(
		accounts,
		chain.NewTransactionResolver(node),
		balances,
		publisher,
		metrics.NewAggregator(cfg.Chain, cfg.Network),
		logger,
	)

	blockSignal, err := startBlockSignal(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		return err
	}
	if blockSignal != nil {
		go followBlockSignal(ctx, blockSignal, node, aggregator, logger)
	}

	c := consumer.NewConsumer(consumer.Config{
		URL:             cfg.RabbitURL,
		Topology:        topology,
		DeclareTopology: cfg.DeclareTopology,
		Prefetch:        cfg.Prefetch,
		ReconnectDelay:  cfg.ReconnectDelay,
	}, consumer.Dial, aggregator, publisher, metrics.NewConsumer(), logger)
	return c.Run(ctx)
}

type tipSource interface {
	GetBlockCount(ctx context.Context) (int64, error)
}

type blockEventHandler interface {
	HandleBlockEvent(ctx context.Context, event model.BlockEvent) error
}

// followBlockSignal turns node block notifications into block events, one per height.
// Signals coalesce, so every height between the last handled one and the tip is replayed.
func followBlockSignal(ctx context.Context, blocks <-chan struct{}, tips tipSource, handler blockEventHandler, logger *zap.Logger) {
	logger = logger.Named("blockSignal")
	last := int64(-1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-blocks:
		}
		tip, err := tips.GetBlockCount(ctx)
		if err != nil {
			logger.Warn("read tip height failed", zap.Error(err))
			continue
		}
		from := last + 1
		if last < 0 {
			from = tip
		}
		for height := from; height <= tip; height++ {
			if ctx.Err() != nil {
				return
			}
			if err := handler.HandleBlockEvent(ctx, model.BlockEvent{Block: height}); err != nil {
				logger.Warn("block event failed", zap.Int64("height", height), zap.Error(err))
			}
			last = height
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}

func newLimiter(rps int) ratelimit.Limiter {
	if rps <= 0 {
		return ratelimit.NewUnlimited()
	}
	return ratelimit.New(rps)
}

func newRPCClient(rawURL, user, password string) (*btcrpc.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return btcrpc.New(&btcrpc.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", zap.Error(err))
		}
	}()
}
