package application

import (
	"context"
	"testing"

	"go-shop/internal/customers/domain"
	"go-shop/pkg/errors"
	"go-shop/pkg/logger"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	customers map[uint]*domain.Customer
	byEmail   map[string]*domain.Customer
	nextID    uint
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[uint]*domain.Customer),
		byEmail:   make(map[string]*domain.Customer),
		nextID:    1,
	}
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	customer.ID = m.nextID
	m.nextID++
	m.customers[customer.ID] = customer
	m.byEmail[customer.Email] = customer
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	customer, ok := m.customers[id]
	if !ok {
		return nil, domain.NewCustomerNotFound(id)
	}
	return customer, nil
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	customer, ok := m.byEmail[email]
	if !ok {
		return nil, errors.NewNotFound("customer", email)
	}
	return customer, nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	events []*domain.Customer
}

func (m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, customer *domain.Customer) error {
	m.events = append(m.events, customer)
	return nil
}

func adaInput() CreateCustomerInput {
	return CreateCustomerInput{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+44 20 0000 0000",
	}
}

func TestCreateCustomer_Success(t *testing.T) {
	// Arrange
	repo := NewMockCustomerRepository()
	publisher := &MockEventPublisher{}
	useCase := NewCustomerUseCase(repo, publisher, logger.NewNop())

	// Act
	customer, err := useCase.CreateCustomer(context.Background(), adaInput())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if customer.ID != 1 {
		t.Errorf("expected ID 1, got %d", customer.ID)
	}
	if customer.FirstName != "Ada" {
		t.Errorf("expected first name 'Ada', got '%s'", customer.FirstName)
	}
	if len(publisher.events) != 1 {
		t.Errorf("expected 1 event published, got %d", len(publisher.events))
	}
}

func TestCreateCustomer_InvalidEmail(t *testing.T) {
	// Arrange
	useCase := NewCustomerUseCase(NewMockCustomerRepository(), &MockEventPublisher{}, logger.NewNop())
	input := adaInput()
	input.Email = "not-an-email"

	// Act
	_, err := useCase.CreateCustomer(context.Background(), input)

	// Assert
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	// Arrange
	publisher := &MockEventPublisher{}
	useCase := NewCustomerUseCase(NewMockCustomerRepository(), publisher, logger.NewNop())
	_, _ = useCase.CreateCustomer(context.Background(), adaInput())

	// Act
	input := adaInput()
	input.Email = "ADA@example.com"
	_, err := useCase.CreateCustomer(context.Background(), input)

	// Assert
	if !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
	if len(publisher.events) != 1 {
		t.Errorf("expected 1 event published, got %d", len(publisher.events))
	}
}

func TestGetCustomer_NotFound(t *testing.T) {
	// Arrange
	useCase := NewCustomerUseCase(NewMockCustomerRepository(), nil, logger.NewNop())

	// Act
	_, err := useCase.GetCustomer(context.Background(), 999)

	// Assert
	if !errors.HasReason(err, domain.ReasonCustomerNotFound) {
		t.Errorf("expected customer not found, got %v", err)
	}
}
