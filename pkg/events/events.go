package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Exchange names (Kafka topics reuse them)
const (
	ExchangeCustomers   = "customers.events"
	ExchangeCatalog     = "catalog.events"
	ExchangeOrders      = "orders.events"
	ExchangeFulfillment = "fulfillment.events"
)

// Routing keys
const (
	RoutingKeyCustomerCreated    = "customer.created"
	RoutingKeyStockReplenished   = "product.stock_replenished"
	RoutingKeyOrderPlaced        = "order.placed"
	RoutingKeyOrderStatusChanged = "order.status_changed"
	RoutingKeyShipmentDispatched = "shipment.dispatched"
	RoutingKeyShipmentDelivered  = "shipment.delivered"
)

const schemaVersion = "1.0"

// Publisher sends an event under a routing key. The RabbitMQ and Kafka
// publishers both satisfy it.
type Publisher interface {
	Publish(ctx context.Context, key string, message interface{}) error
}

// Discard is a Publisher that drops every event. It backs EVENTS_BROKER=none.
type Discard struct{}

// Publish does nothing
func (Discard) Publish(context.Context, string, interface{}) error { return nil }

// Envelope is the common header of every published event
type Envelope struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id"`
}

func newEnvelope(eventType, traceID string, at time.Time) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		Version:   schemaVersion,
		EventType: eventType,
		Timestamp: at,
		TraceID:   traceID,
	}
}

// CustomerCreatedEvent is published when a customer registers
type CustomerCreatedEvent struct {
	Envelope
	Payload CustomerCreatedPayload `json:"payload"`
}

// CustomerCreatedPayload contains customer data
type CustomerCreatedPayload struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(p CustomerCreatedPayload, traceID string, at time.Time) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		Envelope: newEnvelope(RoutingKeyCustomerCreated, traceID, at),
		Payload:  p,
	}
}

// StockReplenishedEvent is published when a product is restocked
type StockReplenishedEvent struct {
	Envelope
	Payload StockReplenishedPayload `json:"payload"`
}

// StockReplenishedPayload contains the restock result
type StockReplenishedPayload struct {
	ProductID uint   `json:"product_id"`
	SKU       string `json:"sku"`
	Added     int    `json:"added"`
	Stock     int    `json:"stock"`
}

// NewStockReplenishedEvent creates a new StockReplenishedEvent
func NewStockReplenishedEvent(p StockReplenishedPayload, traceID string, at time.Time) *StockReplenishedEvent {
	return &StockReplenishedEvent{
		Envelope: newEnvelope(RoutingKeyStockReplenished, traceID, at),
		Payload:  p,
	}
}

// OrderPlacedEvent is published after an order commits
type OrderPlacedEvent struct {
	Envelope
	Payload OrderPlacedPayload `json:"payload"`
}

// OrderPlacedPayload contains order data. Money is carried as decimal strings.
type OrderPlacedPayload struct {
	ID         uint               `json:"id"`
	CustomerID uint               `json:"customer_id"`
	Total      string             `json:"total"`
	Status     string             `json:"status"`
	Items      []OrderLinePayload `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
}

// OrderLinePayload is one line of a placed order
type OrderLinePayload struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(p OrderPlacedPayload, traceID string, at time.Time) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		Envelope: newEnvelope(RoutingKeyOrderPlaced, traceID, at),
		Payload:  p,
	}
}

// OrderStatusChangedEvent is published after a lifecycle transition commits
type OrderStatusChangedEvent struct {
	Envelope
	Payload OrderStatusChangedPayload `json:"payload"`
}

// OrderStatusChangedPayload names both ends of the transition
type OrderStatusChangedPayload struct {
	ID         uint      `json:"id"`
	CustomerID uint      `json:"customer_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ChangedAt  time.Time `json:"changed_at"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(p OrderStatusChangedPayload, traceID string, at time.Time) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		Envelope: newEnvelope(RoutingKeyOrderStatusChanged, traceID, at),
		Payload:  p,
	}
}

// ShipmentEvent is consumed from the fulfillment exchange
type ShipmentEvent struct {
	Envelope
	Payload ShipmentPayload `json:"payload"`
}

// ShipmentPayload identifies the order a shipment belongs to
type ShipmentPayload struct {
	OrderID    uint   `json:"order_id"`
	TrackingID string `json:"tracking_id"`
}
