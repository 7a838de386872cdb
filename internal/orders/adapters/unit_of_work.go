package adapters

import (
	"context"

	"gorm.io/gorm"

	catalogadapters "go-shop/internal/catalog/adapters"
	customeradapters "go-shop/internal/customers/adapters"
	"go-shop/internal/orders/ports"
	"go-shop/pkg/clock"
	"go-shop/pkg/db"
)

// GormUnitOfWork runs each unit in one database transaction. Repositories
// handed to the unit are bound to that transaction. A unit aborted by a
// serialization failure or deadlock is rerun from the start, up to
// maxAttempts times.
type GormUnitOfWork struct {
	db          *gorm.DB
	maxAttempts int
	clock       clock.Clock
}

// NewGormUnitOfWork creates a unit of work over conn
func NewGormUnitOfWork(conn *gorm.DB, maxAttempts int, clk clock.Clock) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:          conn,
		maxAttempts: maxAttempts,
		clock:       clk,
	}
}

// Do runs fn in a transaction and commits if fn returns nil
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	return db.RunInTx(ctx, u.db, u.maxAttempts, func(tx *gorm.DB) error {
		return fn(ctx, ports.Repositories{
			Customers: NewCustomerLookup(customeradapters.NewGormCustomerRepository(tx)),
			Products:  catalogadapters.NewGormProductRepository(tx),
			Orders:    NewGormOrderRepository(tx, u.clock),
		})
	})
}
