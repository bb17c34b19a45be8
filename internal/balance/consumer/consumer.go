// Package consumer drains transaction and block events from RabbitMQ into the aggregator.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	"github.com/goodnatureofminers/blockinsight7000-balance/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-balance/pkg/workerpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPrefetch       = 2
	defaultWorkers        = 2
	defaultReconnectDelay = 5 * time.Second

	transactionQueueLabel = "transaction"
	blockQueueLabel       = "block"
)

var errConnectionClosed = errors.New("broker connection closed")

type Config struct {
	URL             string
	Topology        Topology
	DeclareTopology bool
	Prefetch        int
	Workers         int
	ReconnectDelay  time.Duration
}

// Consumer keeps a broker session alive and feeds every delivery to the handler.
type Consumer struct {
	cfg       Config
	dial      Dialer
	handler   EventHandler
	publisher ChannelBinder
	metrics   Metrics
	sleep     func(context.Context, time.Duration) error
	logger    *zap.Logger
}

func NewConsumer(cfg Config, dial Dialer, handler EventHandler, publisher ChannelBinder, metrics Metrics, logger *zap.Logger) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = defaultPrefetch
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	return &Consumer{
		cfg:       cfg,
		dial:      dial,
		handler:   handler,
		publisher: publisher,
		metrics:   metrics,
		sleep:     clock.SleepWithContext,
		logger:    logger.Named("consumer").With(zap.String("service", cfg.Topology.Service)),
	}
}

// Run consumes until ctx is canceled, reconnecting after every lost session.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("broker session ended, reconnecting", zap.Error(err), zap.Duration("sleep", c.cfg.ReconnectDelay))
		c.metrics.ObserveReconnect()
		if sleepErr := c.sleep(ctx, c.cfg.ReconnectDelay); sleepErr != nil {
			return sleepErr
		}
	}
}

func (c *Consumer) session(ctx context.Context) error {
	conn, err := c.dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	if c.cfg.DeclareTopology {
		if err := c.declare(conn); err != nil {
			return err
		}
	}

	txDeliveries, txCh, err := c.subscribe(conn, c.cfg.Topology.TransactionQueue())
	if err != nil {
		return err
	}
	defer func() {
		_ = txCh.Close()
	}()
	blockDeliveries, blockCh, err := c.subscribe(conn, c.cfg.Topology.BlockQueue())
	if err != nil {
		return err
	}
	defer func() {
		_ = blockCh.Close()
	}()

	pubCh, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open publish channel: %w", err)
	}
	defer func() {
		_ = pubCh.Close()
	}()
	c.publisher.Bind(pubCh)
	defer c.publisher.Bind(nil)

	c.logger.Info("consuming",
		zap.String("transaction_queue", c.cfg.Topology.TransactionQueue()),
		zap.String("block_queue", c.cfg.Topology.BlockQueue()),
		zap.Int("prefetch", c.cfg.Prefetch),
	)

	g, gctx := errgroup.WithContext(ctx)
	sessionCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	drain := func(queue string, deliveries <-chan amqp.Delivery, process func(context.Context, amqp.Delivery)) {
		g.Go(func() error {
			if err := workerpool.Consume(sessionCtx, c.cfg.Workers, deliveries, process); err != nil {
				return err
			}
			return fmt.Errorf("%s deliveries closed", queue)
		})
	}
	drain(transactionQueueLabel, txDeliveries, c.handleTransaction)
	drain(blockQueueLabel, blockDeliveries, c.handleBlock)

	var result error
	select {
	case <-ctx.Done():
		result = ctx.Err()
	case amqpErr, ok := <-closed:
		result = errConnectionClosed
		if ok && amqpErr != nil {
			result = fmt.Errorf("%w: %v", errConnectionClosed, amqpErr)
		}
	case <-gctx.Done():
	}
	cancel()
	if err := g.Wait(); result == nil {
		result = err
	}
	return result
}

func (c *Consumer) declare(conn Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open topology channel: %w", err)
	}
	defer func() {
		_ = ch.Close()
	}()
	return c.cfg.Topology.Declare(ch)
}

func (c *Consumer) subscribe(conn Connection, queue string) (<-chan amqp.Delivery, Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel for %s: %w", queue, err)
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("set prefetch for %s: %w", queue, err)
	}
	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("consume %s: %w", queue, err)
	}
	return deliveries, ch, nil
}

func (c *Consumer) handleTransaction(ctx context.Context, d amqp.Delivery) {
	c.handle(ctx, transactionQueueLabel, d, func(ctx context.Context) error {
		var event model.TransactionEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			return fmt.Errorf("decode transaction event: %w: %v", model.ErrMalformedPayload, err)
		}
		return c.handler.HandleTransactionEvent(ctx, event)
	})
}

func (c *Consumer) handleBlock(ctx context.Context, d amqp.Delivery) {
	c.handle(ctx, blockQueueLabel, d, func(ctx context.Context) error {
		var event model.BlockEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			return fmt.Errorf("decode block event: %w: %v", model.ErrMalformedPayload, err)
		}
		return c.handler.HandleBlockEvent(ctx, event)
	})
}

// handle acknowledges every outcome except an interruption by shutdown, which the broker redelivers.
func (c *Consumer) handle(ctx context.Context, queue string, d amqp.Delivery, process func(context.Context) error) {
	started := time.Now()
	logger := c.logger.With(zap.String("queue", queue), zap.Uint64("delivery_tag", d.DeliveryTag))
	logger.Debug("delivery received")

	err := process(ctx)
	if ctx.Err() != nil {
		logger.Warn("delivery interrupted, left for redelivery", zap.Error(err))
		return
	}

	switch {
	case err == nil:
		logger.Debug("delivery processed")
	case errors.Is(err, model.ErrMalformedPayload):
		logger.Warn("malformed delivery dropped", zap.Error(err))
	case errors.Is(err, model.ErrNotFound):
		logger.Warn("delivery processed with skipped transactions", zap.Error(err))
	default:
		logger.Error("delivery processing failed", zap.Error(err))
	}

	if ackErr := d.Ack(false); ackErr != nil {
		logger.Error("ack delivery failed", zap.Error(ackErr))
	}
	c.metrics.ObserveDelivery(queue, err, started)
}
