package mq_client

import (
	"github.com/streadway/amqp"
)

var AMQPChannel *amqp.Channel
var Connection *amqp.Connection

func Connect() error {
	cn, err := CreateAMQP()
	if err != nil {
		return err
	}

	Connection = cn

	return nil
}

func GetChannel() *amqp.Channel {
	if AMQPChannel != nil {
		return AMQPChannel
	}

	channel, _ := Connection.Channel()
	AMQPChannel = channel

	return AMQPChannel
}

// EnqueueEvent publishes on the events topic exchange with routing key
// kind.id.event, e.g. public.BTCUSDT.trade or private.0xabc.order.
func EnqueueEvent(kind string, id string, event string, payload []byte) error {
	return ChanEnqueueEvent(GetChannel(), kind, id, event, payload)
}

func ChanEnqueueEvent(channel *amqp.Channel, kind string, id string, event string, payload []byte) error {
	routing_key := kind + "." + id + "." + event
	exchange_name, exchange_kind := EventsExchange()

	channel.ExchangeDeclare(exchange_name, exchange_kind, false, false, false, false, nil)

	return channel.Publish(
		exchange_name,
		routing_key,
		false,
		false,
		amqp.Publishing{
			Headers:         amqp.Table{},
			ContentType:     "application/json",
			ContentEncoding: "",
			Body:            payload,
			DeliveryMode:    amqp.Persistent, // 1=non-persistent, 2=persistent
			Priority:        0,               // 0-9
		},
	)
}
