package application

import (
	"context"

	"go.uber.org/zap"

	"go-shop/internal/customers/domain"
	"go-shop/internal/customers/ports"
	"go-shop/pkg/errors"
	"go-shop/pkg/logger"
)

// CustomerUseCase handles customer business logic
type CustomerUseCase struct {
	repo      ports.CustomerRepository
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewCustomerUseCase creates a new customer use case
func NewCustomerUseCase(repo ports.CustomerRepository, publisher ports.EventPublisher, log *logger.Logger) *CustomerUseCase {
	return &CustomerUseCase{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// CreateCustomerInput represents the input for creating a customer
type CreateCustomerInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// CreateCustomer registers a new customer
func (uc *CustomerUseCase) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(input.Email, input.FirstName, input.LastName, input.Phone, input.Address)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetByEmail(ctx, customer.Email)
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, errors.NewInternal("failed to check email existence", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishCustomerCreated(ctx, customer); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish customer created event",
				zap.Error(err),
				zap.Uint("customer_id", customer.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("customer created",
		zap.Uint("customer_id", customer.ID),
		zap.String("email", customer.Email),
	)

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (uc *CustomerUseCase) GetCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	return uc.repo.GetByID(ctx, id)
}
