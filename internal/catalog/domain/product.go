package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places a price may carry
const PriceScale = 2

// Product is a catalog entry with finite stock. It is an immutable value:
// stock mutations return an updated copy.
type Product struct {
	id          uint
	sku         string
	name        string
	description string
	price       decimal.Decimal
	stock       int
	createdAt   time.Time
	updatedAt   time.Time
}

// ProductSnapshot is the flat form of a Product used by storage adapters
type ProductSnapshot struct {
	ID          uint
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct validates and creates an unsaved product
func NewProduct(sku, name, description string, price decimal.Decimal, stock int, now time.Time) (Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)

	if sku == "" {
		return Product{}, ErrSKURequired
	}
	if name == "" {
		return Product{}, ErrNameRequired
	}
	if !price.IsPositive() || !price.Equal(price.Round(PriceScale)) {
		return Product{}, ErrInvalidPrice
	}
	if stock < 0 {
		return Product{}, ErrNegativeStock
	}

	return Product{
		sku:         sku,
		name:        name,
		description: description,
		price:       price,
		stock:       stock,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// RestoreProduct rebuilds a product loaded from storage
func RestoreProduct(s ProductSnapshot) (Product, error) {
	if s.Stock < 0 {
		return Product{}, ErrNegativeStock
	}
	if !s.Price.IsPositive() {
		return Product{}, ErrInvalidPrice
	}

	return Product{
		id:          s.ID,
		sku:         s.SKU,
		name:        s.Name,
		description: s.Description,
		price:       s.Price,
		stock:       s.Stock,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}, nil
}

// Snapshot returns the flat form of p
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.id,
		SKU:         p.sku,
		Name:        p.name,
		Description: p.description,
		Price:       p.price,
		Stock:       p.stock,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}

func (p Product) ID() uint { return p.id }
func (p Product) SKU() string { return p.sku }
func (p Product) Name() string { return p.name }
func (p Product) Description() string { return p.description }
func (p Product) Price() decimal.Decimal { return p.price }
func (p Product) Stock() int { return p.stock }
func (p Product) CreatedAt() time.Time { return p.createdAt }
func (p Product) UpdatedAt() time.Time { return p.updatedAt }

// IsAvailable reports whether at least requested units are in stock.
// It does not validate requested.
func (p Product) IsAvailable(requested int) bool {
	return p.stock >= requested
}

// ReduceStock returns p with qty fewer units
func (p Product) ReduceStock(qty int, now time.Time) (Product, error) {
	if qty <= 0 {
		return p, ErrInvalidQuantity
	}
	if p.stock < qty {
		return p, NewInsufficientStock(p.name, qty, p.stock)
	}

	p.stock -= qty
	p.updatedAt = now
	return p, nil
}

// IncreaseStock returns p with qty more units
func (p Product) IncreaseStock(qty int, now time.Time) (Product, error) {
	if qty <= 0 {
		return p, ErrInvalidQuantity
	}

	p.stock += qty
	p.updatedAt = now
	return p, nil
}
