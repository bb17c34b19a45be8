package consumer

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Dialer opens a broker connection.
type Dialer func(url string) (Connection, error)

// Dial connects to RabbitMQ with amqp091-go.
func Dial(url string) (Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{Connection: conn}, nil
}

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}
