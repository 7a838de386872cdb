package domain

import (
	catalog "go-shop/internal/catalog/domain"
	customers "go-shop/internal/customers/domain"
	"go-shop/pkg/errors"
)

// Machine-readable reasons carried by order errors
const (
	ReasonMissingCustomer        = "MISSING_CUSTOMER"
	ReasonEmptyOrder             = "EMPTY_ORDER"
	ReasonMissingProduct         = "MISSING_PRODUCT"
	ReasonInvalidQuantity        = catalog.ReasonInvalidQuantity
	ReasonCustomerNotFound       = customers.ReasonCustomerNotFound
	ReasonProductNotFound        = catalog.ReasonProductNotFound
	ReasonInsufficientStock      = catalog.ReasonInsufficientStock
	ReasonIllegalStateTransition = "ILLEGAL_STATE_TRANSITION"
	ReasonOrderClosed            = "ORDER_CLOSED"
	ReasonOrderNotFound          = "ORDER_NOT_FOUND"
	ReasonInvalidItem            = "INVALID_ITEM"
	ReasonInvalidUnitPrice       = "INVALID_UNIT_PRICE"
	ReasonLineNotFound           = "LINE_NOT_FOUND"
	ReasonUnknownStatus          = "UNKNOWN_STATUS"
)

// Domain-specific errors
var (
	ErrMissingCustomer        = errors.NewValidation("customer_id is required", nil).WithReason(ReasonMissingCustomer)
	ErrEmptyOrder             = errors.NewValidation("order must contain at least one item", nil).WithReason(ReasonEmptyOrder)
	ErrMissingProduct         = errors.NewValidation("product_id is required", nil).WithReason(ReasonMissingProduct)
	ErrInvalidQuantity        = catalog.ErrInvalidQuantity
	ErrCustomerNotFound       = customers.ErrCustomerNotFound
	ErrProductNotFound        = catalog.ErrProductNotFound
	ErrInsufficientStock      = catalog.ErrInsufficientStock
	ErrIllegalStateTransition = errors.NewConflict("illegal order state transition").WithReason(ReasonIllegalStateTransition)
	ErrOrderClosed            = errors.NewConflict("order is closed").WithReason(ReasonOrderClosed)
	ErrOrderNotFound          = errors.NewNotFound("order", "unknown").WithReason(ReasonOrderNotFound)
	ErrInvalidItem            = errors.NewValidation("order item is empty", nil).WithReason(ReasonInvalidItem)
	ErrInvalidUnitPrice       = errors.NewValidation("unit price must be non-negative with at most 2 decimal places", nil).WithReason(ReasonInvalidUnitPrice)
	ErrLineNotFound           = errors.NewNotFound("order line", "unknown").WithReason(ReasonLineNotFound)
	ErrUnknownStatus          = errors.NewValidation("unknown order status", nil).WithReason(ReasonUnknownStatus)
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id uint) error {
	return errors.NewNotFound("order", id).WithReason(ReasonOrderNotFound)
}

// NewInsufficientStock reports that productName has fewer than requested
// units available
func NewInsufficientStock(productName string, requested, available int) error {
	return catalog.NewInsufficientStock(productName, requested, available)
}

// NewIllegalStateTransition reports a status change the state machine forbids
func NewIllegalStateTransition(from, to OrderStatus) error {
	return ErrIllegalStateTransition.
		WithMessage("cannot move order from " + from.String() + " to " + to.String()).
		WithDetails(map[string]interface{}{
			"from": from.String(),
			"to":   to.String(),
		})
}

// NewOrderClosed reports an item mutation on a terminal order
func NewOrderClosed(status OrderStatus) error {
	return ErrOrderClosed.
		WithMessage("order is " + status.String() + " and can no longer be modified").
		WithDetails(map[string]interface{}{"status": status.String()})
}

// NewLineNotFound reports an unknown line number
func NewLineNotFound(line int) error {
	return errors.NewNotFound("order line", line).WithReason(ReasonLineNotFound)
}
