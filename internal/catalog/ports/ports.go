package ports

import (
	"context"

	"go-shop/internal/catalog/domain"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create stores a new product and returns it with its generated ID
	Create(ctx context.Context, product domain.Product) (domain.Product, error)

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uint) (domain.Product, error)

	// GetBySKU retrieves a product by SKU
	GetBySKU(ctx context.Context, sku string) (domain.Product, error)

	// List returns products ordered by ID
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)

	// GetByIDForUpdate retrieves a product and holds a row lock on it until
	// the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id uint) (domain.Product, error)

	// Save persists the stock and descriptive fields of an existing product
	Save(ctx context.Context, product domain.Product) error

	// Adjust applies fn to the locked product and saves the result in one
	// transaction
	Adjust(ctx context.Context, id uint, fn func(domain.Product) (domain.Product, error)) (domain.Product, error)
}

// EventPublisher defines the interface for publishing catalog events
type EventPublisher interface {
	// PublishStockReplenished publishes a restock event
	PublishStockReplenished(ctx context.Context, product domain.Product, added int) error
}
