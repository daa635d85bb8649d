package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypePostScheduled       MessageType = "post.scheduled"
	MessageTypeSubmissionCompleted MessageType = "submission.completed"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// PostScheduledPayload — payload события о запланированном посте.
type PostScheduledPayload struct {
	PostID       uuid.UUID `json:"post_id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Venue        string    `json:"venue"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}

// SubmissionCompletedPayload — payload события о завершённой попытке.
type SubmissionCompletedPayload struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	PostID       uuid.UUID `json:"post_id"`
	Venue        string    `json:"venue"`
	Status       string    `json:"status"` // SUBMITTED или FAILED
	Attempt      int       `json:"attempt"`
	Error        string    `json:"error,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishPostScheduled публикует событие о новом запланированном посте.
// Потребитель: Dispatcher.
func (p *Publisher) PublishPostScheduled(ctx context.Context, payload PostScheduledPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypePostScheduled,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangePosts, RoutingKeyScheduled, msg)
}

// PublishSubmissionCompleted публикует событие о завершённой попытке
// доставки. Потребители: внешние подписчики аудита.
func (p *Publisher) PublishSubmissionCompleted(ctx context.Context, payload SubmissionCompletedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeSubmissionCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeSubmissions, RoutingKeyCompleted, msg)
}
