package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"go-shop/pkg/clock"
)

// Order is the aggregate root for a customer's purchase. Items are only
// changed through the order's own methods, and every change recomputes the
// total. Once an order is DELIVERED or CANCELLED every mutation fails.
type Order struct {
	id         uint
	customerID uint
	items      []OrderItem
	total      decimal.Decimal
	status     OrderStatus
	createdAt  time.Time
	updatedAt  time.Time
	clock      clock.Clock
}

// OrderSnapshot is the flat form of an Order used by storage adapters
type OrderSnapshot struct {
	ID         uint
	CustomerID uint
	Items      []OrderItemSnapshot
	Total      decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrder creates an empty PENDING order for customerID
func NewOrder(customerID uint, clk clock.Clock) (*Order, error) {
	if customerID == 0 {
		return nil, ErrMissingCustomer
	}
	if clk == nil {
		clk = clock.System{}
	}

	now := clk.Now()
	return &Order{
		customerID: customerID,
		total:      decimal.Zero,
		status:     OrderStatusPending,
		createdAt:  now,
		updatedAt:  now,
		clock:      clk,
	}, nil
}

// RestoreOrder rebuilds an order loaded from storage. Line numbers are kept
// and the total is recomputed from the items.
func RestoreOrder(s OrderSnapshot, clk clock.Clock) (*Order, error) {
	if s.CustomerID == 0 {
		return nil, ErrMissingCustomer
	}
	status, err := ParseOrderStatus(string(s.Status))
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.System{}
	}

	items := make([]OrderItem, 0, len(s.Items))
	for _, is := range s.Items {
		item, err := RestoreOrderItem(is)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	o := &Order{
		id:         s.ID,
		customerID: s.CustomerID,
		items:      items,
		status:     status,
		createdAt:  s.CreatedAt,
		updatedAt:  s.UpdatedAt,
		clock:      clk,
	}
	o.recalculate()
	return o, nil
}

// Snapshot returns the flat form of o
func (o *Order) Snapshot() OrderSnapshot {
	items := make([]OrderItemSnapshot, len(o.items))
	for i, item := range o.items {
		items[i] = item.Snapshot()
	}
	return OrderSnapshot{
		ID:         o.id,
		CustomerID: o.customerID,
		Items:      items,
		Total:      o.total,
		Status:     o.status,
		CreatedAt:  o.createdAt,
		UpdatedAt:  o.updatedAt,
	}
}

func (o *Order) ID() uint { return o.id }
func (o *Order) CustomerID() uint { return o.customerID }
func (o *Order) Total() decimal.Decimal { return o.total }
func (o *Order) Status() OrderStatus { return o.status }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// Items returns a copy of the order lines in insertion order
func (o *Order) Items() []OrderItem {
	out := make([]OrderItem, len(o.items))
	copy(out, o.items)
	return out
}

// Units returns the total quantity across all lines
func (o *Order) Units() int {
	n := 0
	for _, item := range o.items {
		n += item.quantity
	}
	return n
}

// AddItem appends item as the next line. Adding the same product twice
// yields two lines.
func (o *Order) AddItem(item OrderItem) error {
	if err := o.checkOpen(); err != nil {
		return err
	}
	if item.IsZero() {
		return ErrInvalidItem
	}

	item.line = o.nextLine()
	o.items = append(o.items, item)
	o.touch()
	return nil
}

// RemoveItem drops the line with the given number. An unknown line leaves
// the items unchanged.
func (o *Order) RemoveItem(line int) error {
	if err := o.checkOpen(); err != nil {
		return err
	}

	for i, item := range o.items {
		if item.line == line {
			o.items = append(o.items[:i:i], o.items[i+1:]...)
			break
		}
	}
	o.touch()
	return nil
}

// ReplaceItems swaps the whole item set and renumbers lines from 1
func (o *Order) ReplaceItems(items []OrderItem) error {
	if err := o.checkOpen(); err != nil {
		return err
	}

	next := make([]OrderItem, len(items))
	for i, item := range items {
		if item.IsZero() {
			return ErrInvalidItem
		}
		item.line = i + 1
		next[i] = item
	}

	o.items = next
	o.touch()
	return nil
}

// ChangeItemQuantity sets the quantity of one line
func (o *Order) ChangeItemQuantity(line, quantity int) error {
	if err := o.checkOpen(); err != nil {
		return err
	}

	for i, item := range o.items {
		if item.line != line {
			continue
		}
		updated, err := item.WithQuantity(quantity)
		if err != nil {
			return err
		}
		o.items[i] = updated
		o.touch()
		return nil
	}
	return NewLineNotFound(line)
}

// Confirm moves a PENDING order to CONFIRMED
func (o *Order) Confirm() error {
	return o.transition(OrderStatusConfirmed)
}

// Ship moves a CONFIRMED order to SHIPPED
func (o *Order) Ship() error {
	return o.transition(OrderStatusShipped)
}

// Deliver moves a SHIPPED order to DELIVERED
func (o *Order) Deliver() error {
	return o.transition(OrderStatusDelivered)
}

// Cancel moves any order that is not yet DELIVERED or CANCELLED to
// CANCELLED. Stock is not restored.
func (o *Order) Cancel() error {
	return o.transition(OrderStatusCancelled)
}

// TransitionTo applies the transition to status, failing like the named
// operations when the state machine forbids it
func (o *Order) TransitionTo(status OrderStatus) error {
	return o.transition(status)
}

func (o *Order) transition(to OrderStatus) error {
	if !o.status.CanTransitionTo(to) {
		return NewIllegalStateTransition(o.status, to)
	}
	o.status = to
	o.updatedAt = o.clock.Now()
	return nil
}

func (o *Order) checkOpen() error {
	if o.status.IsTerminal() {
		return NewOrderClosed(o.status)
	}
	return nil
}

func (o *Order) nextLine() int {
	last := 0
	for _, item := range o.items {
		if item.line > last {
			last = item.line
		}
	}
	return last + 1
}

// touch recomputes the total and refreshes the update time
func (o *Order) touch() {
	o.recalculate()
	o.updatedAt = o.clock.Now()
}

func (o *Order) recalculate() {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.subtotal)
	}
	o.total = total
}
