package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"tupperstock/internal/models"

	amqp "github.com/streadway/amqp"
)

// EventOrderCreated is the type of the event emitted after checkout.
const EventOrderCreated = "order.created"

// OrderEventPublisher announces placed orders.
type OrderEventPublisher interface {
	OrderCreated(ctx context.Context, data models.OrderConfirmation) error
}

// EventQueue is the part of the message broker client used for publishing.
type EventQueue interface {
	PublishJSON(eventType string, v any) error
}

// QueuePublisher puts order events on the message queue.
type QueuePublisher struct {
	queue EventQueue
}

// NewQueuePublisher creates a new QueuePublisher.
func NewQueuePublisher(queue EventQueue) *QueuePublisher {
	return &QueuePublisher{queue: queue}
}

// OrderCreated publishes data as an order.created event.
func (p *QueuePublisher) OrderCreated(_ context.Context, data models.OrderConfirmation) error {
	if err := p.queue.PublishJSON(EventOrderCreated, data); err != nil {
		return err
	}
	log.Printf("Published %s event for order %s", EventOrderCreated, data.OrderName)
	return nil
}

// DirectPublisher sends the confirmation email in-process. It is used when
// no message broker is configured.
type DirectPublisher struct {
	notifications *NotificationService
}

// NewDirectPublisher creates a new DirectPublisher.
func NewDirectPublisher(n *NotificationService) *DirectPublisher {
	return &DirectPublisher{notifications: n}
}

// OrderCreated sends the confirmation email right away.
func (p *DirectPublisher) OrderCreated(ctx context.Context, data models.OrderConfirmation) error {
	_, err := p.notifications.SendOrderConfirmation(ctx, data)
	return err
}

// HandleOrderEvent returns a queue consumer that sends the confirmation email
// for every order.created message. Messages of other types are acknowledged
// and ignored.
func HandleOrderEvent(n *NotificationService) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		if msg.Type != "" && msg.Type != EventOrderCreated {
			log.Printf("Ignoring %s event", msg.Type)
			return nil
		}
		var data models.OrderConfirmation
		if err := json.Unmarshal(msg.Body, &data); err != nil {
			return fmt.Errorf("decode %s event: %w", EventOrderCreated, err)
		}
		if _, err := n.SendOrderConfirmation(context.Background(), data); err != nil {
			return fmt.Errorf("order %s: %w", data.OrderName, err)
		}
		return nil
	}
}
