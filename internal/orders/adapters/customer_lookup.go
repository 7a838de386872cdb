package adapters

import (
	"context"

	customerports "go-shop/internal/customers/ports"
	"go-shop/internal/orders/ports"
)

// CustomerLookup resolves order customers from the customer repository
type CustomerLookup struct {
	repo customerports.CustomerRepository
}

// NewCustomerLookup creates a CustomerFinder over repo
func NewCustomerLookup(repo customerports.CustomerRepository) *CustomerLookup {
	return &CustomerLookup{repo: repo}
}

// FindByID returns the customer or a CUSTOMER_NOT_FOUND error
func (l *CustomerLookup) FindByID(ctx context.Context, id uint) (*ports.CustomerInfo, error) {
	c, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ports.CustomerInfo{
		ID:    c.ID,
		Email: c.Email,
		Name:  c.FullName(),
	}, nil
}
