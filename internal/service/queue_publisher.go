// Package queue_publisher provides the RabbitMQ implementation of
// queue.Publisher. Errors are logged and returned so callers can ignore
// failures without interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/bookish/account-service/internal/queue"
)

// AMQPPublisher publishes account events to the account.events queue.
// Each publish dials a fresh connection; lifecycle events are rare
// enough that a persistent channel is not worth the reconnect handling.
type AMQPPublisher struct{ URL string }

func New() *AMQPPublisher { return &AMQPPublisher{URL: q.BrokerURL()} }

// PublishAccountEvent publishes one event. The function never panics;
// any error is logged and returned so the caller can choose to ignore
// it. Messages are marked as persistent.
func (p *AMQPPublisher) PublishAccountEvent(ctx context.Context, event q.AccountEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		"account.events", // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		"account.events", // routing key = queue name
		false,            // mandatory
		false,            // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
