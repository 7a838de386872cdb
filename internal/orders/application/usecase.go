package application

import (
	"context"
	stderrors "errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-shop/internal/orders/domain"
	"go-shop/internal/orders/ports"
	"go-shop/pkg/clock"
	"go-shop/pkg/errors"
	"go-shop/pkg/logger"
)

const tracerName = "go-shop/internal/orders"

// OrderUseCase handles order placement and the order lifecycle
type OrderUseCase struct {
	uow       ports.UnitOfWork
	publisher ports.EventPublisher
	metrics   ports.Metrics
	clock     clock.Clock
	tracer    trace.Tracer
	log       *logger.Logger
}

// NewOrderUseCase creates a new order use case. publisher and metrics may be
// nil.
func NewOrderUseCase(
	uow ports.UnitOfWork,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	clk clock.Clock,
	log *logger.Logger,
) *OrderUseCase {
	if clk == nil {
		clk = clock.System{}
	}
	return &OrderUseCase{
		uow:       uow,
		publisher: publisher,
		metrics:   metrics,
		clock:     clk,
		tracer:    otel.Tracer(tracerName),
		log:       log,
	}
}

// PlaceOrderItem is one requested line: a product and a quantity
type PlaceOrderItem struct {
	ProductID uint
	Quantity  int
}

// PlaceOrderInput represents the input for placing an order
type PlaceOrderInput struct {
	CustomerID uint
	Items      []PlaceOrderItem
}

// Validate checks the request shape before anything is read or written
func (in PlaceOrderInput) Validate() error {
	if in.CustomerID == 0 {
		return domain.ErrMissingCustomer
	}
	if len(in.Items) == 0 {
		return domain.ErrEmptyOrder
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			return domain.ErrMissingProduct.WithDetails(map[string]interface{}{"item": i})
		}
		if item.Quantity <= 0 {
			return domain.ErrInvalidQuantity.WithDetails(map[string]interface{}{"item": i, "quantity": item.Quantity})
		}
	}
	return nil
}

// PlaceOrder reserves stock for every requested item and stores the order in
// one unit of work. Either the order and all stock reductions commit, or
// nothing does.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.PlaceOrder", trace.WithAttributes(
		attribute.Int64("customer.id", int64(input.CustomerID)),
		attribute.Int("order.requested_lines", len(input.Items)),
	))
	defer span.End()

	if err := input.Validate(); err != nil {
		return nil, uc.placementFailed(ctx, span, err)
	}

	var placed *domain.Order
	err := uc.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		customer, err := repos.Customers.FindByID(ctx, input.CustomerID)
		if err != nil {
			return err
		}

		order, err := domain.NewOrder(customer.ID, uc.clock)
		if err != nil {
			return err
		}

		for _, req := range input.Items {
			if err := uc.reserve(ctx, repos.Products, order, req); err != nil {
				return err
			}
		}

		placed, err = repos.Orders.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, uc.placementFailed(ctx, span, err)
	}

	span.SetAttributes(
		attribute.Int64("order.id", int64(placed.ID())),
		attribute.String("order.total", placed.Total().String()),
	)

	if uc.metrics != nil {
		uc.metrics.OrderPlaced(placed.Units())
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderPlaced(ctx, placed); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order placed event",
				zap.Error(err),
				zap.Uint("order_id", placed.ID()),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order placed",
		zap.Uint("order_id", placed.ID()),
		zap.Uint("customer_id", placed.CustomerID()),
		zap.Int("lines", len(placed.Items())),
		zap.String("total", placed.Total().String()),
	)

	return placed, nil
}

// reserve locks the product, takes req.Quantity units from its stock, saves
// it and appends a line priced at the product's current price
func (uc *OrderUseCase) reserve(ctx context.Context, products ports.ProductStore, order *domain.Order, req PlaceOrderItem) error {
	product, err := products.GetByIDForUpdate(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if req.Quantity > 0 && !product.IsAvailable(req.Quantity) {
		return domain.NewInsufficientStock(product.Name(), req.Quantity, product.Stock())
	}

	reduced, err := product.ReduceStock(req.Quantity, uc.clock.Now())
	if err != nil {
		return err
	}
	if err := products.Save(ctx, reduced); err != nil {
		return err
	}

	item, err := domain.NewOrderItem(reduced.ID(), reduced.Name(), reduced.Price(), req.Quantity)
	if err != nil {
		return err
	}
	return order.AddItem(item)
}

func (uc *OrderUseCase) placementFailed(ctx context.Context, span trace.Span, err error) error {
	reason := reasonOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	if uc.metrics != nil {
		uc.metrics.PlacementFailed(reason)
	}

	log := uc.log.WithContext(ctx)
	if errors.Is(err, errors.CodeInternal) || reason == "" {
		log.Error("order placement failed", zap.Error(err))
	} else {
		log.Info("order placement rejected", zap.String("reason", reason), zap.Error(err))
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.NewInternal("failed to place order", err)
}

// GetOrder retrieves an order with its items
func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	var order *domain.Order
	err := uc.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		order, err = repos.Orders.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListCustomerOrders returns every order of an existing customer, newest
// first
func (uc *OrderUseCase) ListCustomerOrders(ctx context.Context, customerID uint) ([]*domain.Order, error) {
	if customerID == 0 {
		return nil, domain.ErrMissingCustomer
	}

	var orders []*domain.Order
	err := uc.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if _, err := repos.Customers.FindByID(ctx, customerID); err != nil {
			return err
		}
		var err error
		orders, err = repos.Orders.ListByCustomer(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ConfirmOrder moves a PENDING order to CONFIRMED
func (uc *OrderUseCase) ConfirmOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.transition(ctx, id, domain.OrderStatusConfirmed)
}

// ShipOrder moves a CONFIRMED order to SHIPPED
func (uc *OrderUseCase) ShipOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.transition(ctx, id, domain.OrderStatusShipped)
}

// DeliverOrder moves a SHIPPED order to DELIVERED
func (uc *OrderUseCase) DeliverOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.transition(ctx, id, domain.OrderStatusDelivered)
}

// CancelOrder cancels an order that is not yet DELIVERED or CANCELLED.
// Reserved stock is not returned to the catalog.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.transition(ctx, id, domain.OrderStatusCancelled)
}

// transition loads the order under lock, applies the status change and saves
// it. Two racing callers are serialized by the lock; the loser sees the
// winner's status and fails with ILLEGAL_STATE_TRANSITION.
func (uc *OrderUseCase) transition(ctx context.Context, id uint, to domain.OrderStatus) (*domain.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "orders.Transition", trace.WithAttributes(
		attribute.Int64("order.id", int64(id)),
		attribute.String("order.to", to.String()),
	))
	defer span.End()

	var (
		from    domain.OrderStatus
		updated *domain.Order
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		order, err := repos.Orders.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		from = order.Status()
		if err := order.TransitionTo(to); err != nil {
			return err
		}

		updated, err = repos.Orders.Save(ctx, order)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, reasonOf(err))
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.StatusChanged(to.String())
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderStatusChanged(ctx, updated, from); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order status changed event",
				zap.Error(err),
				zap.Uint("order_id", updated.ID()),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order status changed",
		zap.Uint("order_id", updated.ID()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)

	return updated, nil
}

func reasonOf(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.Reason != "" {
			return appErr.Reason
		}
		return appErr.Code
	}
	return ""
}
