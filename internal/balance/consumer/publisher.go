package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

var errPublisherUnbound = errors.New("no broker session for publishing")

// Publisher emits balance updates on the channel of the current broker session.
type Publisher struct {
	mu       sync.RWMutex
	ch       Channel
	topology Topology
}

func NewPublisher(topology Topology) *Publisher {
	return &Publisher{topology: topology}
}

func (p *Publisher) Bind(ch Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ch = ch
}

// PublishBalance routes update to <service>_balance.<address> on the events exchange.
func (p *Publisher) PublishBalance(ctx context.Context, update model.BalanceUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode balance update: %w", err)
	}

	p.mu.RLock()
	ch := p.ch
	p.mu.RUnlock()
	if ch == nil {
		return errPublisherUnbound
	}

	msg := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	}
	if err := ch.PublishWithContext(ctx, EventsExchange, p.topology.BalanceRoutingKey(update.Address), false, false, msg); err != nil {
		return fmt.Errorf("publish balance %s: %w", update.Address, err)
	}
	return nil
}
