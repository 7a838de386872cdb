package domain

import (
	"github.com/shopspring/decimal"

	catalog "go-shop/internal/catalog/domain"
)

// OrderItem is one line of an order: a product reference with the name and
// unit price captured when the line was created. Subtotal is always
// unitPrice × quantity.
type OrderItem struct {
	id          uint
	line        int
	productID   uint
	productName string
	unitPrice   decimal.Decimal
	quantity    int
	subtotal    decimal.Decimal
}

// OrderItemSnapshot is the flat form of an OrderItem used by storage adapters
type OrderItemSnapshot struct {
	ID          uint
	Line        int
	ProductID   uint
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// NewOrderItem creates an unsaved line item. The line number is assigned when
// the item is added to an order.
func NewOrderItem(productID uint, productName string, unitPrice decimal.Decimal, quantity int) (OrderItem, error) {
	if productID == 0 {
		return OrderItem{}, ErrMissingProduct
	}
	return OrderItem{
		productID:   productID,
		productName: productName,
	}.priced(unitPrice, quantity)
}

// RestoreOrderItem rebuilds a line item loaded from storage. The stored
// subtotal is ignored and recomputed.
func RestoreOrderItem(s OrderItemSnapshot) (OrderItem, error) {
	if s.ProductID == 0 {
		return OrderItem{}, ErrMissingProduct
	}
	return OrderItem{
		id:          s.ID,
		line:        s.Line,
		productID:   s.ProductID,
		productName: s.ProductName,
	}.priced(s.UnitPrice, s.Quantity)
}

func (i OrderItem) priced(unitPrice decimal.Decimal, quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() || !unitPrice.Equal(unitPrice.Round(catalog.PriceScale)) {
		return OrderItem{}, ErrInvalidUnitPrice
	}
	i.unitPrice = unitPrice
	i.quantity = quantity
	i.subtotal = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return i, nil
}

// WithQuantity returns i with a new quantity and recomputed subtotal
func (i OrderItem) WithQuantity(quantity int) (OrderItem, error) {
	return i.priced(i.unitPrice, quantity)
}

// WithUnitPrice returns i with a new unit price and recomputed subtotal
func (i OrderItem) WithUnitPrice(unitPrice decimal.Decimal) (OrderItem, error) {
	return i.priced(unitPrice, i.quantity)
}

// IsZero reports whether i is the zero value
func (i OrderItem) IsZero() bool {
	return i.productID == 0
}

func (i OrderItem) ID() uint { return i.id }
func (i OrderItem) Line() int { return i.line }
func (i OrderItem) ProductID() uint { return i.productID }
func (i OrderItem) ProductName() string { return i.productName }
func (i OrderItem) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i OrderItem) Quantity() int { return i.quantity }
func (i OrderItem) Subtotal() decimal.Decimal { return i.subtotal }

// Snapshot returns the flat form of i
func (i OrderItem) Snapshot() OrderItemSnapshot {
	return OrderItemSnapshot{
		ID:          i.id,
		Line:        i.line,
		ProductID:   i.productID,
		ProductName: i.productName,
		UnitPrice:   i.unitPrice,
		Quantity:    i.quantity,
		Subtotal:    i.subtotal,
	}
}
