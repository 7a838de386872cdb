package ports

import (
	"context"

	catalog "go-shop/internal/catalog/domain"
	"go-shop/internal/orders/domain"
)

// CustomerFinder resolves the customer an order is placed for
type CustomerFinder interface {
	// FindByID returns the customer or a CUSTOMER_NOT_FOUND error
	FindByID(ctx context.Context, id uint) (*CustomerInfo, error)
}

// CustomerInfo is the part of a customer the order workflow needs
type CustomerInfo struct {
	ID    uint
	Email string
	Name  string
}

// ProductStore loads and saves products inside a unit of work
type ProductStore interface {
	// GetByIDForUpdate returns the product and locks its row until the unit
	// of work ends
	GetByIDForUpdate(ctx context.Context, id uint) (catalog.Product, error)

	// Save persists the product's current stock
	Save(ctx context.Context, product catalog.Product) error
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Save inserts a new order with its items, or updates the status of an
	// existing one, and returns the stored order with assigned ids
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)

	// GetByID retrieves an order with its items
	GetByID(ctx context.Context, id uint) (*domain.Order, error)

	// GetByIDForUpdate retrieves an order and locks its row until the unit of
	// work ends
	GetByIDForUpdate(ctx context.Context, id uint) (*domain.Order, error)

	// ListByCustomer retrieves a customer's orders, newest first
	ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error)
}

// Repositories are the stores visible inside one unit of work
type Repositories struct {
	Customers CustomerFinder
	Products  ProductStore
	Orders    OrderRepository
}

// UnitOfWork runs fn atomically: either every write fn makes through repos
// commits, or none does
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// EventPublisher defines the interface for publishing order events
type EventPublisher interface {
	// PublishOrderPlaced publishes an order placed event
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error

	// PublishOrderStatusChanged publishes a lifecycle transition
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
}

// Metrics records order outcomes
type Metrics interface {
	OrderPlaced(units int)
	PlacementFailed(reason string)
	StatusChanged(to string)
}
