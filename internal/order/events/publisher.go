// Package events publishes order lifecycle events to RabbitMQ for external
// consumers (notification bots, reporting). Publishing is optional and
// best-effort; the in-process tracking feed does not depend on it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"comanda/internal/domain"
)

const (
	OrderCreatedQueue       = "order.created"
	OrderStatusChangedQueue = "order.status_changed"
)

type OrderCreated struct {
	EventType    string      `json:"eventType"`
	OrderID      string      `json:"orderId"`
	TenantSlug   string      `json:"tenantSlug"`
	CustomerName string      `json:"customerName"`
	Items        []EventItem `json:"items"`
	Subtotal     string      `json:"subtotal"`
	Discount     string      `json:"discount"`
	Total        string      `json:"total"`
	Timestamp    time.Time   `json:"timestamp"`
}

type EventItem struct {
	Title     string `json:"title"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

type OrderStatusChanged struct {
	EventType  string    `json:"eventType"`
	OrderID    string    `json:"orderId"`
	TenantSlug string    `json:"tenantSlug"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher is nil-safe: a nil *Publisher silently drops events so wiring can
// be disabled through configuration alone.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare queues so publish never fails due to missing infra.
	for _, queue := range []string{OrderCreatedQueue, OrderStatusChangedQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare %s: %w", queue, err)
		}
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	if p == nil {
		return nil
	}

	ev := OrderCreated{
		EventType:    "OrderCreated",
		OrderID:      order.ID,
		TenantSlug:   order.TenantSlug,
		CustomerName: order.CustomerName,
		Subtotal:     order.Subtotal.StringFixed(2),
		Discount:     order.Discount.StringFixed(2),
		Total:        order.Total.StringFixed(2),
		Timestamp:    time.Now().UTC(),
	}
	for _, item := range order.Items {
		ev.Items = append(ev.Items, EventItem{
			Title:     item.Title,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	return p.publishJSON(ctx, OrderCreatedQueue, body)
}

func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	if p == nil {
		return nil
	}

	ev := OrderStatusChanged{
		EventType:  "OrderStatusChanged",
		OrderID:    order.ID,
		TenantSlug: order.TenantSlug,
		Status:     string(order.Status),
		Timestamp:  time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderStatusChanged: %w", err)
	}

	return p.publishJSON(ctx, OrderStatusChangedQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
