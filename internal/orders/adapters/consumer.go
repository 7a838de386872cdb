package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"go-shop/internal/orders/domain"
	"go-shop/pkg/errors"
	"go-shop/pkg/events"
	"go-shop/pkg/logger"
	"go-shop/pkg/rabbitmq"
)

const fulfillmentQueue = "orders.fulfillment"

// ShipmentHandler advances orders when the fulfillment service reports
// progress
type ShipmentHandler interface {
	ShipOrder(ctx context.Context, id uint) (*domain.Order, error)
	DeliverOrder(ctx context.Context, id uint) (*domain.Order, error)
}

// FulfillmentConsumer consumes shipment events and drives the matching order
// transitions
type FulfillmentConsumer struct {
	consumer *rabbitmq.Consumer
	handler  ShipmentHandler
	log      *logger.Logger
}

// NewFulfillmentConsumer binds the fulfillment queue to the shipment routing
// keys
func NewFulfillmentConsumer(conn *rabbitmq.Connection, handler ShipmentHandler, log *logger.Logger) (*FulfillmentConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		fulfillmentQueue,
		events.ExchangeFulfillment,
		[]string{events.RoutingKeyShipmentDispatched, events.RoutingKeyShipmentDelivered},
		log,
	)
	if err != nil {
		return nil, err
	}

	return &FulfillmentConsumer{
		consumer: consumer,
		handler:  handler,
		log:      log,
	}, nil
}

// Start starts consuming shipment events
func (c *FulfillmentConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.HandleDelivery)
}

// HandleDelivery applies one shipment event. Events that no longer apply
// (unknown order, or the order already moved on) are acknowledged and
// dropped; other failures are returned for redelivery.
func (c *FulfillmentConsumer) HandleDelivery(ctx context.Context, d rabbitmq.Delivery) error {
	var event events.ShipmentEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.log.WithContext(ctx).Error("failed to unmarshal shipment event",
			zap.Error(err),
			zap.String("routing_key", d.RoutingKey),
		)
		return nil
	}

	var err error
	switch d.RoutingKey {
	case events.RoutingKeyShipmentDispatched:
		_, err = c.handler.ShipOrder(ctx, event.Payload.OrderID)
	case events.RoutingKeyShipmentDelivered:
		_, err = c.handler.DeliverOrder(ctx, event.Payload.OrderID)
	default:
		return fmt.Errorf("unexpected routing key %q", d.RoutingKey)
	}

	if errors.HasReason(err, domain.ReasonIllegalStateTransition) || errors.HasReason(err, domain.ReasonOrderNotFound) {
		c.log.WithContext(ctx).Warn("shipment event ignored",
			zap.Error(err),
			zap.Uint("order_id", event.Payload.OrderID),
			zap.String("routing_key", d.RoutingKey),
		)
		return nil
	}
	if err != nil {
		return err
	}

	c.log.WithContext(ctx).Info("shipment event applied",
		zap.Uint("order_id", event.Payload.OrderID),
		zap.String("tracking_id", event.Payload.TrackingID),
		zap.String("routing_key", d.RoutingKey),
	)
	return nil
}
