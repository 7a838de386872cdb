package adapters

import (
	"context"

	"go-shop/internal/orders/domain"
	"go-shop/pkg/events"
	"go-shop/pkg/logger"
)

// EventPublisher implements the order EventPublisher over a RabbitMQ or
// Kafka publisher bound to the orders exchange or topic
type EventPublisher struct {
	publisher events.Publisher
}

// NewEventPublisher creates a new order event publisher
func NewEventPublisher(publisher events.Publisher) *EventPublisher {
	return &EventPublisher{publisher: publisher}
}

// PublishOrderPlaced publishes an order.placed event
func (p *EventPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	items := order.Items()
	lines := make([]events.OrderLinePayload, len(items))
	for i, item := range items {
		lines[i] = events.OrderLinePayload{
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().StringFixed(2),
			Subtotal:  item.Subtotal().StringFixed(2),
		}
	}

	event := events.NewOrderPlacedEvent(events.OrderPlacedPayload{
		ID:         order.ID(),
		CustomerID: order.CustomerID(),
		Total:      order.Total().StringFixed(2),
		Status:     order.Status().String(),
		Items:      lines,
		CreatedAt:  order.CreatedAt(),
	}, logger.GetTraceID(ctx), order.CreatedAt())

	return p.publisher.Publish(ctx, events.RoutingKeyOrderPlaced, event)
}

// PublishOrderStatusChanged publishes an order.status_changed event
func (p *EventPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	event := events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		ID:         order.ID(),
		CustomerID: order.CustomerID(),
		From:       from.String(),
		To:         order.Status().String(),
		ChangedAt:  order.UpdatedAt(),
	}, logger.GetTraceID(ctx), order.UpdatedAt())

	return p.publisher.Publish(ctx, events.RoutingKeyOrderStatusChanged, event)
}
