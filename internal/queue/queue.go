package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/internal/config"
)

// OutcomeNotification is the message the token service publishes once a
// previously submitted transfer has resolved. It carries the request ID and
// the binary outcome, nothing else.
type OutcomeNotification struct {
	RequestID string `json:"request_id"`
	Outcome   string `json:"outcome"`
}

type QueueManager struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cfg  *config.QueueConfig
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		cfg.OutcomeQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.OutcomeQueue, err)
	}

	return &QueueManager{conn: conn, ch: ch, cfg: cfg}, nil
}

// SubscribeOutcomes delivers each outcome notification to the handler. A nil
// handler result acknowledges the message; an error requeues it for another
// attempt. Malformed payloads are dropped. Blocks until the context is done
// or the channel closes.
func (qm *QueueManager) SubscribeOutcomes(
	ctx context.Context,
	handler func(ctx context.Context, notification OutcomeNotification) error,
) error {
	deliveries, err := qm.ch.Consume(
		qm.cfg.OutcomeQueue,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", qm.cfg.OutcomeQueue, err)
	}

	log.Info().Str("queue", qm.cfg.OutcomeQueue).Msg("Subscribed to transfer outcome notifications")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("outcome queue %s closed", qm.cfg.OutcomeQueue)
			}
			qm.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (qm *QueueManager) handleDelivery(
	ctx context.Context,
	delivery amqp.Delivery,
	handler func(ctx context.Context, notification OutcomeNotification) error,
) {
	var notification OutcomeNotification
	if err := json.Unmarshal(delivery.Body, &notification); err != nil {
		log.Error().Err(err).Msg("Failed to decode outcome notification, dropping")
		if err := delivery.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("Failed to nack outcome notification")
		}
		return
	}

	if err := handler(ctx, notification); err != nil {
		log.Error().Err(err).
			Str("requestId", notification.RequestID).
			Msg("Failed to process outcome notification, requeueing")
		if err := delivery.Nack(false, true); err != nil {
			log.Error().Err(err).Msg("Failed to nack outcome notification")
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		log.Error().Err(err).Msg("Failed to ack outcome notification")
	}
}

// PublishOutcome pushes a notification onto the outcome queue. The token
// service owns this in production; it is exposed for tooling and tests.
func (qm *QueueManager) PublishOutcome(ctx context.Context, notification OutcomeNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return qm.ch.PublishWithContext(ctx,
		"", // default exchange
		qm.cfg.OutcomeQueue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Shutdown gracefully stops the interaction with the queue, ensuring all
// resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if err := qm.ch.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close queue channel")
	}
	if err := qm.conn.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close queue connection")
	}
}
