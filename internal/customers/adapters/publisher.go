package adapters

import (
	"context"

	"go-shop/internal/customers/domain"
	"go-shop/pkg/events"
	"go-shop/pkg/logger"
)

// EventPublisher implements the customer EventPublisher over a broker
// publisher
type EventPublisher struct {
	publisher events.Publisher
}

// NewEventPublisher creates a new customer event publisher
func NewEventPublisher(publisher events.Publisher) *EventPublisher {
	return &EventPublisher{publisher: publisher}
}

// PublishCustomerCreated publishes a customer.created event
func (p *EventPublisher) PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error {
	event := events.NewCustomerCreatedEvent(events.CustomerCreatedPayload{
		ID:        customer.ID,
		Email:     customer.Email,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		CreatedAt: customer.CreatedAt,
	}, logger.GetTraceID(ctx), customer.CreatedAt)

	return p.publisher.Publish(ctx, events.RoutingKeyCustomerCreated, event)
}
