package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-shop/internal/orders/domain"
	"go-shop/pkg/clock"
	"go-shop/pkg/db"
	apperrors "go-shop/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID         uint             `gorm:"primaryKey"`
	CustomerID uint             `gorm:"index;not null"`
	Total      decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Status     string           `gorm:"size:20;not null;default:'PENDING'"`
	Items      []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the GORM model for order lines
type OrderItemModel struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"not null;uniqueIndex:idx_order_items_order_line"`
	LineNo      int             `gorm:"not null;uniqueIndex:idx_order_items_order_line"`
	ProductID   uint            `gorm:"index;not null"`
	ProductName string          `gorm:"size:200;not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null;check:chk_order_items_quantity_positive,quantity > 0"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// GormOrderRepository implements OrderRepository with GORM
type GormOrderRepository struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewGormOrderRepository creates a new order repository. Restored orders use
// clk for their timestamps.
func NewGormOrderRepository(db *gorm.DB, clk clock.Clock) *GormOrderRepository {
	return &GormOrderRepository{db: db, clock: clk}
}

// Migrate runs auto-migration for the order models
func (r *GormOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderItemModel{})
}

// Save inserts a new order with its lines, or rewrites an existing order's
// row and lines, and returns the stored order
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	model := toModel(order.Snapshot())
	tx := r.db.WithContext(ctx)

	if model.ID == 0 {
		if err := tx.Create(model).Error; err != nil {
			return nil, apperrors.NewInternal("failed to create order", err)
		}
		return r.GetByID(ctx, model.ID)
	}

	result := tx.Model(&OrderModel{ID: model.ID}).Updates(map[string]interface{}{
		"total":      model.Total,
		"status":     model.Status,
		"updated_at": model.UpdatedAt,
	})
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to update order", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.NewOrderNotFound(model.ID)
	}

	if err := tx.Where("order_id = ?", model.ID).Delete(&OrderItemModel{}).Error; err != nil {
		return nil, apperrors.NewInternal("failed to replace order items", err)
	}
	if len(model.Items) > 0 {
		if err := tx.Create(&model.Items).Error; err != nil {
			return nil, apperrors.NewInternal("failed to replace order items", err)
		}
	}

	return r.GetByID(ctx, model.ID)
}

// GetByID retrieves an order with its lines
func (r *GormOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	return r.load(ctx, r.db.WithContext(ctx), id)
}

// GetByIDForUpdate retrieves an order with SELECT ... FOR UPDATE on its row
func (r *GormOrderRepository) GetByIDForUpdate(ctx context.Context, id uint) (*domain.Order, error) {
	return r.load(ctx, db.ForUpdate(r.db.WithContext(ctx)), id)
}

// ListByCustomer retrieves a customer's orders, newest first
func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("line_no") }).
		Where("customer_id = ?", customerID).
		Order("id DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders", result.Error)
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		o, err := r.toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *GormOrderRepository) load(ctx context.Context, q *gorm.DB, id uint) (*domain.Order, error) {
	var model OrderModel

	if err := q.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", err)
	}

	err := r.db.WithContext(ctx).Where("order_id = ?", id).Order("line_no").Find(&model.Items).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to get order items", err)
	}

	return r.toDomain(&model)
}

// toModel converts an order snapshot to GORM models
func toModel(s domain.OrderSnapshot) *OrderModel {
	items := make([]OrderItemModel, len(s.Items))
	for i, is := range s.Items {
		items[i] = OrderItemModel{
			ID:          is.ID,
			OrderID:     s.ID,
			LineNo:      is.Line,
			ProductID:   is.ProductID,
			ProductName: is.ProductName,
			UnitPrice:   is.UnitPrice,
			Quantity:    is.Quantity,
			Subtotal:    is.Subtotal,
		}
	}
	return &OrderModel{
		ID:         s.ID,
		CustomerID: s.CustomerID,
		Total:      s.Total,
		Status:     string(s.Status),
		Items:      items,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// toDomain converts GORM models to an order
func (r *GormOrderRepository) toDomain(m *OrderModel) (*domain.Order, error) {
	items := make([]domain.OrderItemSnapshot, len(m.Items))
	for i, im := range m.Items {
		items[i] = domain.OrderItemSnapshot{
			ID:          im.ID,
			Line:        im.LineNo,
			ProductID:   im.ProductID,
			ProductName: im.ProductName,
			UnitPrice:   im.UnitPrice,
			Quantity:    im.Quantity,
			Subtotal:    im.Subtotal,
		}
	}

	o, err := domain.RestoreOrder(domain.OrderSnapshot{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Items:      items,
		Total:      m.Total,
		Status:     domain.OrderStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, r.clock)
	if err != nil {
		return nil, apperrors.NewInternal("corrupt order row", err)
	}
	return o, nil
}
