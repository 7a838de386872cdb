package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-shop/internal/customers/domain"
	apperrors "go-shop/pkg/errors"
)

// CustomerModel is the GORM model for customers (persistence layer)
type CustomerModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	FirstName string    `gorm:"size:100;not null"`
	LastName  string    `gorm:"size:100;not null"`
	Phone     string    `gorm:"size:50"`
	Address   string    `gorm:"size:500"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// GormCustomerRepository implements CustomerRepository with GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new customer repository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Migrate runs auto-migration for the customer model
func (r *GormCustomerRepository) Migrate() error {
	return r.db.AutoMigrate(&CustomerModel{})
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	model := toModel(customer)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailExists
		}
		return apperrors.NewInternal("failed to create customer", result.Error)
	}

	customer.ID = model.ID
	customer.CreatedAt = model.CreatedAt
	customer.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves a customer by ID
func (r *GormCustomerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCustomerNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get customer", result.Error)
	}

	return toDomain(&model), nil
}

// GetByEmail retrieves a customer by email
func (r *GormCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var model CustomerModel

	result := r.db.WithContext(ctx).Where("email = ?", email).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("customer", email)
		}
		return nil, apperrors.NewInternal("failed to get customer by email", result.Error)
	}

	return toDomain(&model), nil
}

// toModel converts a domain entity to a GORM model
func toModel(c *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(m *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
