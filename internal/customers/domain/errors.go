package domain

import "go-shop/pkg/errors"

// ReasonCustomerNotFound tags lookups of unknown customers
const ReasonCustomerNotFound = "CUSTOMER_NOT_FOUND"

// Domain-specific errors
var (
	ErrEmailRequired     = errors.NewValidation("email is required", nil)
	ErrEmailInvalid      = errors.NewValidation("email format is invalid", nil)
	ErrFirstNameRequired = errors.NewValidation("first name is required", nil)
	ErrLastNameRequired  = errors.NewValidation("last name is required", nil)
	ErrNameLength        = errors.NewValidation("names must be at most 100 characters", nil)
	ErrEmailExists       = errors.NewConflict("email already exists")
	ErrCustomerNotFound  = errors.NewNotFound("customer", "unknown").WithReason(ReasonCustomerNotFound)
)

// NewCustomerNotFound creates a not found error with the customer ID
func NewCustomerNotFound(id uint) error {
	return errors.NewNotFound("customer", id).WithReason(ReasonCustomerNotFound)
}
