package consumer

import "fmt"

// EventsExchange is the topic exchange carrying inbound events and outbound balance updates.
const EventsExchange = "events"

// Topology derives queue names and routing keys from the service name.
type Topology struct {
	Service string
}

func (t Topology) TransactionQueue() string {
	return fmt.Sprintf("app_%s.balance_processor.tx", t.Service)
}

func (t Topology) BlockQueue() string {
	return fmt.Sprintf("app_%s.balance_processor.block", t.Service)
}

func (t Topology) TransactionRoutingKey() string {
	return t.Service + "_transaction.*"
}

func (t Topology) BlockRoutingKey() string {
	return t.Service + "_block"
}

func (t Topology) BalanceRoutingKey(address string) string {
	return fmt.Sprintf("%s_balance.%s", t.Service, address)
}

// Declare asserts the exchange and both queues with their bindings.
func (t Topology) Declare(ch Channel) error {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", false, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}

	bindings := []struct {
		queue string
		key   string
	}{
		{queue: t.TransactionQueue(), key: t.TransactionRoutingKey()},
		{queue: t.BlockQueue(), key: t.BlockRoutingKey()},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.key, EventsExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.key, err)
		}
	}
	return nil
}
