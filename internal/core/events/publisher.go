package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// Publisher fans CRM events out to interested services. Implementations must
// be safe to call concurrently; failures are the caller's to ignore, since
// event fan-out is never allowed to fail a user-visible turn.
type Publisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
	Close() error
}

// TicketCreatedEvent is emitted on the "ticket.created" routing key.
type TicketCreatedEvent struct {
	TicketID  int64     `json:"ticket_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	ContactID uuid.UUID `json:"contact_id"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"`
	Source    string    `json:"source"` // "chat" or "api"
	CreatedAt time.Time `json:"created_at"`
}

type rmqPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// NewRabbitMQ connects and declares a durable topic exchange.
func NewRabbitMQ(url, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &rmqPublisher{conn: conn, exchange: exchange}, nil
}

func (r *rmqPublisher) Publish(ctx context.Context, key string, event interface{}) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx, r.exchange, key, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (r *rmqPublisher) Close() error {
	return r.conn.Close()
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, key string, event interface{}) error { return nil }
func (Noop) Close() error                                                     { return nil }

// FromConfig returns a RabbitMQ publisher when a URL is set, Noop otherwise.
func FromConfig(url, exchange string) Publisher {
	if url == "" {
		return Noop{}
	}
	pub, err := NewRabbitMQ(url, exchange)
	if err != nil {
		utils.LogWarn("event publisher disabled", map[string]interface{}{"error": err.Error()})
		return Noop{}
	}
	utils.LogInfo("event publisher connected", map[string]interface{}{"exchange": exchange})
	return pub
}
