package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangePosts       Exchange = "postline.posts"
	ExchangeSubmissions Exchange = "postline.submissions"
	ExchangeDLQ         Exchange = "postline.dlq"
)

// Queues — имена очередей.
const (
	// QueuePostsScheduled — свежезапланированные посты.
	// Consumer: Dispatcher (немедленный wake-up вместо ожидания тика).
	QueuePostsScheduled Queue = "posts.scheduled"

	// QueueSubmissionsCompleted — завершённые попытки доставки
	// (SUBMITTED/FAILED). Consumers: внешние подписчики аудита
	// и нотификаций.
	QueueSubmissionsCompleted Queue = "submissions.completed"

	// QueueDLQ — сообщения, обработка которых не удалась.
	QueueDLQ Queue = "dlq.events"
)

// Routing keys.
const (
	RoutingKeyScheduled RoutingKey = "scheduled"
	RoutingKeyCompleted RoutingKey = "completed"
	RoutingKeyDLQ       RoutingKey = "events"
)

// SetupTopology декларирует обменники, очереди и привязки.
// Идемпотентно: повторный вызов безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangePosts, "direct"},
		{ExchangeSubmissions, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQ),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// posts.scheduled — с DLQ: wake-up события dispatcher'а.
		{QueuePostsScheduled, dlqArgs},

		// submissions.completed — без DLQ: чистые события аудита.
		{QueueSubmissionsCompleted, nil},

		// dlq.events — сама DLQ очередь.
		{QueueDLQ, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueuePostsScheduled, RoutingKeyScheduled, ExchangePosts},
		{QueueSubmissionsCompleted, RoutingKeyCompleted, ExchangeSubmissions},
		{QueueDLQ, RoutingKeyDLQ, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
