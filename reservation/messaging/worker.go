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

type CommandDispatcher interface {
	Dispatch(request model.ReservationRequest) model.ReservationResponse
}

type replyPublisher interface {
	PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error
}

// CommandWorker consumes ReservationRequest commands from a durable queue and
// answers on the ReplyTo queue of each delivery, if any.
type CommandWorker struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queue      string
	dispatcher CommandDispatcher
}

func NewCommandWorker(config Configuration, dispatcher CommandDispatcher) (*CommandWorker, error) {
	conn, err := amqp.Dial(config.ConnectionUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if _, err = declareQueue(ch, config.CommandQueueName()); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &CommandWorker{conn: conn, channel: ch, queue: config.CommandQueueName(), dispatcher: dispatcher}, nil
}

// Run consumes commands one at a time until ctx is cancelled or the broker
// closes the delivery channel.
func (w *CommandWorker) Run(ctx context.Context) error {
	deliveries, err := w.channel.Consume(
		w.queue,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf("Command worker listening on queue %v\n", w.queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel of queue %v closed", w.queue)
			}
			handleDelivery(ctx, delivery, w.channel, w.dispatcher)
		}
	}
}

func (w *CommandWorker) Close() error {
	channelErr := w.channel.Close()
	connErr := w.conn.Close()
	if channelErr != nil {
		return channelErr
	}
	return connErr
}

func handleDelivery(parentCtx context.Context, delivery amqp.Delivery, publisher replyPublisher, dispatcher CommandDispatcher) {
	// always acked, a malformed command would otherwise be redelivered forever
	defer func() {
		if err := delivery.Ack(false); err != nil {
			log.Printf("Failed to ack message: %v\n", err)
		}
	}()

	ctx, cancel := context.WithTimeout(parentCtx, 5*time.Second)
	defer cancel()

	var request model.ReservationRequest
	if err := json.Unmarshal(delivery.Body, &request); err != nil {
		log.Printf("Invalid command: %v\n", err)
		reply(ctx, publisher, delivery, model.NewFailureResponse(delivery.CorrelationId,
			fmt.Errorf("%w: invalid command format: %v", model.ErrInvalidReservation, err)))
		return
	}
	if request.RequestId == "" {
		request.RequestId = delivery.CorrelationId
	}

	reply(ctx, publisher, delivery, dispatcher.Dispatch(request))
}

func reply(ctx context.Context, publisher replyPublisher, delivery amqp.Delivery, response model.ReservationResponse) {
	if delivery.ReplyTo == "" {
		return
	}
	body, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal response: %v\n", err)
		return
	}

	err = publisher.PublishWithContext(ctx,
		"",
		delivery.ReplyTo,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: delivery.CorrelationId,
			Body:          body,
		})
	if err != nil {
		log.Printf("Failed to publish response: %v\n", err)
	}
}
