package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-shop/internal/catalog/domain"
	"go-shop/pkg/db"
	apperrors "go-shop/pkg/errors"
)

const adjustAttempts = 3

// ProductModel is the GORM model for products (persistence layer)
type ProductModel struct {
	ID          uint            `gorm:"primaryKey"`
	SKU         string          `gorm:"column:sku;size:64;uniqueIndex;not null"`
	Name        string          `gorm:"size:200;not null"`
	Description string          `gorm:"size:2000"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock       int             `gorm:"not null;check:chk_products_stock_non_negative,stock >= 0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// GormProductRepository implements ProductRepository with GORM. Bound to a
// transaction handle it also serves as the locked product store of a unit of
// work.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Migrate runs auto-migration for the product model
func (r *GormProductRepository) Migrate() error {
	return r.db.AutoMigrate(&ProductModel{})
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	model := toModel(product)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Product{}, domain.ErrSKUExists
		}
		return domain.Product{}, apperrors.NewInternal("failed to create product", err)
	}

	return r.first(r.db.WithContext(ctx), model.ID)
}

// GetByID retrieves a product by ID
func (r *GormProductRepository) GetByID(ctx context.Context, id uint) (domain.Product, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// GetBySKU retrieves a product by SKU
func (r *GormProductRepository) GetBySKU(ctx context.Context, sku string) (domain.Product, error) {
	var model ProductModel

	result := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.NewProductNotFoundBySKU(sku)
		}
		return domain.Product{}, apperrors.NewInternal("failed to get product by sku", result.Error)
	}

	return toDomain(&model)
}

// List returns products ordered by ID
func (r *GormProductRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	var models []ProductModel

	result := r.db.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list products", result.Error)
	}

	products := make([]domain.Product, 0, len(models))
	for i := range models {
		p, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// GetByIDForUpdate retrieves a product with SELECT ... FOR UPDATE
func (r *GormProductRepository) GetByIDForUpdate(ctx context.Context, id uint) (domain.Product, error) {
	return r.first(db.ForUpdate(r.db.WithContext(ctx)), id)
}

// Save updates an existing product
func (r *GormProductRepository) Save(ctx context.Context, product domain.Product) error {
	model := toModel(product)

	result := r.db.WithContext(ctx).Model(&ProductModel{ID: model.ID}).Updates(map[string]interface{}{
		"name":        model.Name,
		"description": model.Description,
		"price":       model.Price,
		"stock":       model.Stock,
		"updated_at":  model.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.NewInternal("failed to save product", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(product.ID())
	}
	return nil
}

// Adjust locks the product, applies fn and saves the result in one
// transaction
func (r *GormProductRepository) Adjust(ctx context.Context, id uint, fn func(domain.Product) (domain.Product, error)) (domain.Product, error) {
	var updated domain.Product

	err := db.RunInTx(ctx, r.db, adjustAttempts, func(tx *gorm.DB) error {
		txRepo := NewGormProductRepository(tx)

		current, err := txRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := txRepo.Save(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

func (r *GormProductRepository) first(q *gorm.DB, id uint) (domain.Product, error) {
	var model ProductModel

	result := q.First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domain.Product{}, domain.NewProductNotFound(id)
		}
		return domain.Product{}, apperrors.NewInternal("failed to get product", result.Error)
	}

	return toDomain(&model)
}

// toModel converts a domain product to a GORM model
func toModel(p domain.Product) *ProductModel {
	s := p.Snapshot()
	return &ProductModel{
		ID:          s.ID,
		SKU:         s.SKU,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Stock:       s.Stock,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain product
func toDomain(m *ProductModel) (domain.Product, error) {
	p, err := domain.RestoreProduct(domain.ProductSnapshot{
		ID:          m.ID,
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	})
	if err != nil {
		return domain.Product{}, apperrors.NewInternal("corrupt product row", err)
	}
	return p, nil
}
