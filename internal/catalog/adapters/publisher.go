package adapters

import (
	"context"

	"go-shop/internal/catalog/domain"
	"go-shop/pkg/events"
	"go-shop/pkg/logger"
)

// EventPublisher implements the catalog EventPublisher over a broker
// publisher bound to the catalog exchange or topic
type EventPublisher struct {
	publisher events.Publisher
}

// NewEventPublisher creates a new catalog event publisher
func NewEventPublisher(publisher events.Publisher) *EventPublisher {
	return &EventPublisher{publisher: publisher}
}

// PublishStockReplenished publishes a product.stock_replenished event
func (p *EventPublisher) PublishStockReplenished(ctx context.Context, product domain.Product, added int) error {
	event := events.NewStockReplenishedEvent(events.StockReplenishedPayload{
		ProductID: product.ID(),
		SKU:       product.SKU(),
		Added:     added,
		Stock:     product.Stock(),
	}, logger.GetTraceID(ctx), product.UpdatedAt())

	return p.publisher.Publish(ctx, events.RoutingKeyStockReplenished, event)
}
