package consumer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-balance/internal/balance/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE
//go:generate mockgen -destination=mocks_amqp_test.go -package=$GOPACKAGE github.com/rabbitmq/amqp091-go Acknowledger

type (
	// Connection is the subset of *amqp.Connection the consumer needs.
	Connection interface {
		Channel() (Channel, error)
		NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
		Close() error
	}
	// Channel is the subset of *amqp.Channel the consumer and publisher need.
	Channel interface {
		Qos(prefetchCount, prefetchSize int, global bool) error
		Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
		ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
		QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
		QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
		PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
		Close() error
	}
	EventHandler interface {
		HandleTransactionEvent(ctx context.Context, event model.TransactionEvent) error
		HandleBlockEvent(ctx context.Context, event model.BlockEvent) error
	}
	// ChannelBinder receives the publishing channel of every broker session, nil once it ends.
	ChannelBinder interface {
		Bind(ch Channel)
	}
	Metrics interface {
		ObserveDelivery(queue string, err error, started time.Time)
		ObserveReconnect()
	}
)
