package domain

import (
	"regexp"
	"strings"
	"time"
)

// Customer represents a registered buyer
type Customer struct {
	ID        uint
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmailRegex is the pattern for validating emails
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the customer entity
func (c *Customer) Validate() error {
	if c.Email == "" {
		return ErrEmailRequired
	}
	if !EmailRegex.MatchString(c.Email) {
		return ErrEmailInvalid
	}
	if c.FirstName == "" {
		return ErrFirstNameRequired
	}
	if c.LastName == "" {
		return ErrLastNameRequired
	}
	if len(c.FirstName) > 100 || len(c.LastName) > 100 {
		return ErrNameLength
	}
	return nil
}

// FullName joins first and last name
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// NewCustomer creates a new customer with validation. Email is lowercased.
func NewCustomer(email, firstName, lastName, phone, address string) (*Customer, error) {
	now := time.Now().UTC()
	customer := &Customer{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Phone:     strings.TrimSpace(phone),
		Address:   strings.TrimSpace(address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return customer, nil
}
