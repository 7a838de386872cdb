package application

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-shop/internal/catalog/domain"
	"go-shop/internal/catalog/ports"
	"go-shop/pkg/clock"
	"go-shop/pkg/errors"
	"go-shop/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ProductUseCase handles catalog business logic
type ProductUseCase struct {
	repo      ports.ProductRepository
	publisher ports.EventPublisher
	clock     clock.Clock
	log       *logger.Logger
}

// NewProductUseCase creates a new product use case
func NewProductUseCase(repo ports.ProductRepository, publisher ports.EventPublisher, clk clock.Clock, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		log:       log,
	}
}

// RegisterProductInput represents the input for registering a product
type RegisterProductInput struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// RegisterProduct adds a product to the catalog
func (uc *ProductUseCase) RegisterProduct(ctx context.Context, input RegisterProductInput) (domain.Product, error) {
	product, err := domain.NewProduct(input.SKU, input.Name, input.Description, input.Price, input.Stock, uc.clock.Now())
	if err != nil {
		return domain.Product{}, err
	}

	_, err = uc.repo.GetBySKU(ctx, product.SKU())
	if err == nil {
		return domain.Product{}, domain.ErrSKUExists
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return domain.Product{}, errors.NewInternal("failed to check sku existence", err)
	}

	created, err := uc.repo.Create(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	uc.log.WithContext(ctx).Info("product registered",
		zap.Uint("product_id", created.ID()),
		zap.String("sku", created.SKU()),
		zap.Int("stock", created.Stock()),
	)

	return created, nil
}

// GetProduct retrieves a product by ID
func (uc *ProductUseCase) GetProduct(ctx context.Context, id uint) (domain.Product, error) {
	return uc.repo.GetByID(ctx, id)
}

// GetProductBySKU retrieves a product by SKU
func (uc *ProductUseCase) GetProductBySKU(ctx context.Context, sku string) (domain.Product, error) {
	return uc.repo.GetBySKU(ctx, sku)
}

// ListProducts returns a page of products. A non-positive limit selects the
// default page size.
func (uc *ProductUseCase) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(ctx, limit, offset)
}

// RestockProduct adds qty units to a product's stock
func (uc *ProductUseCase) RestockProduct(ctx context.Context, id uint, qty int) (domain.Product, error) {
	if qty <= 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	product, err := uc.repo.Adjust(ctx, id, func(p domain.Product) (domain.Product, error) {
		return p.IncreaseStock(qty, uc.clock.Now())
	})
	if err != nil {
		return domain.Product{}, err
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishStockReplenished(ctx, product, qty); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish stock replenished event",
				zap.Error(err),
				zap.Uint("product_id", product.ID()),
			)
		}
	}

	uc.log.WithContext(ctx).Info("product restocked",
		zap.Uint("product_id", product.ID()),
		zap.Int("added", qty),
		zap.Int("stock", product.Stock()),
	)

	return product, nil
}
