package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

type EventEnvelope struct {
	Type       string
	OccurredAt time.Time
	Payload    json.RawMessage
}

// EventPublisher fans reservation events out to every queue bound to the
// configured exchange.
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(config Configuration) (*EventPublisher, error) {
	conn, err := amqp.Dial(config.ConnectionUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err = declareExchange(ch, config.ExchangeName()); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{conn: conn, channel: ch, exchange: config.ExchangeName()}, nil
}

func (p *EventPublisher) Publish(event any) error {
	body, err := EncodeEvent(event, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		"",    // routing key, ignored by fanout
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return err
	}
	log.Printf("Published %s\n", body)
	return nil
}

func (p *EventPublisher) Close() error {
	channelErr := p.channel.Close()
	connErr := p.conn.Close()
	if channelErr != nil {
		return channelErr
	}
	return connErr
}

func EncodeEvent(event any, occurredAt time.Time) ([]byte, error) {
	eventType, err := eventTypeOf(event)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(EventEnvelope{Type: eventType, OccurredAt: occurredAt.UTC(), Payload: payload})
}

func eventTypeOf(event any) (string, error) {
	switch event.(type) {
	case model.ReservationCreated, *model.ReservationCreated:
		return "ReservationCreated", nil
	case model.ReservationCancelled, *model.ReservationCancelled:
		return "ReservationCancelled", nil
	default:
		return "", fmt.Errorf("unsupported event %T", event)
	}
}
