package events

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange           = "eventica.events"
	CartCheckedOutRoutingKey = "cart.checkedout.v1"
	EventTypeCartCheckedOut  = "CartCheckedOut"
)

// exchangeDeclarer is the part of *amqp.Channel used to set up the topology.
type exchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

func declareEventsExchange(ch exchangeDeclarer) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
