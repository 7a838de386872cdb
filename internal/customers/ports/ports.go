package ports

import (
	"context"

	"go-shop/internal/customers/domain"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by ID
	GetByID(ctx context.Context, id uint) (*domain.Customer, error)

	// GetByEmail retrieves a customer by email
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

// EventPublisher defines the interface for publishing customer events
type EventPublisher interface {
	// PublishCustomerCreated publishes a customer created event
	PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error
}
