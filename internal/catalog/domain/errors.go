package domain

import (
	"fmt"

	"go-shop/pkg/errors"
)

// Machine-readable reasons carried by catalog errors
const (
	ReasonInvalidQuantity   = "INVALID_QUANTITY"
	ReasonInsufficientStock = "INSUFFICIENT_STOCK"
	ReasonProductNotFound   = "PRODUCT_NOT_FOUND"
	ReasonSKUExists         = "SKU_EXISTS"
)

// Domain-specific errors
var (
	ErrSKURequired       = errors.NewValidation("sku is required", nil)
	ErrNameRequired      = errors.NewValidation("name is required", nil)
	ErrInvalidPrice      = errors.NewValidation("price must be greater than 0 with at most 2 decimal places", nil)
	ErrNegativeStock     = errors.NewValidation("stock quantity cannot be negative", nil)
	ErrInvalidQuantity   = errors.NewValidation("quantity must be positive", nil).WithReason(ReasonInvalidQuantity)
	ErrInsufficientStock = errors.NewUnprocessable("insufficient stock", nil).WithReason(ReasonInsufficientStock)
	ErrProductNotFound   = errors.NewNotFound("product", "unknown").WithReason(ReasonProductNotFound)
	ErrSKUExists         = errors.NewConflict("sku already exists").WithReason(ReasonSKUExists)
)

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id uint) error {
	return errors.NewNotFound("product", id).WithReason(ReasonProductNotFound)
}

// NewProductNotFoundBySKU creates a not found error with the product SKU
func NewProductNotFoundBySKU(sku string) error {
	return errors.NewNotFound("product with sku", sku).WithReason(ReasonProductNotFound)
}

// NewInsufficientStock reports that productName has fewer than requested
// units available
func NewInsufficientStock(productName string, requested, available int) error {
	return ErrInsufficientStock.
		WithMessage(fmt.Sprintf("insufficient stock for product '%s': requested %d, available %d", productName, requested, available)).
		WithDetails(map[string]interface{}{
			"product":   productName,
			"requested": requested,
			"available": available,
		})
}
