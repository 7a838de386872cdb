package adapters

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	catalogadapters "go-shop/internal/catalog/adapters"
	catalog "go-shop/internal/catalog/domain"
	customeradapters "go-shop/internal/customers/adapters"
	customers "go-shop/internal/customers/domain"
	"go-shop/internal/orders/application"
	"go-shop/internal/orders/domain"
	"go-shop/internal/orders/ports"
	"go-shop/pkg/clock"
	"go-shop/pkg/db"
	apperrors "go-shop/pkg/errors"
	"go-shop/pkg/events"
	"go-shop/pkg/logger"
	"go-shop/pkg/rabbitmq"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *gorm.DB
	clock    *clock.Fixed
	products *catalogadapters.GormProductRepository
	orders   *GormOrderRepository
	uow      *GormUnitOfWork
	customer uint
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.NewConnection(db.Config{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	clk := clock.NewFixed(t0)
	customerRepo := customeradapters.NewGormCustomerRepository(conn)
	products := catalogadapters.NewGormProductRepository(conn)
	orders := NewGormOrderRepository(conn, clk)
	require.NoError(t, customerRepo.Migrate())
	require.NoError(t, products.Migrate())
	require.NoError(t, orders.Migrate())

	c, err := customers.NewCustomer("ada@example.com", "Ada", "Lovelace", "", "")
	require.NoError(t, err)
	require.NoError(t, customerRepo.Create(context.Background(), c))

	return &testEnv{
		db:       conn,
		clock:    clk,
		products: products,
		orders:   orders,
		uow:      NewGormUnitOfWork(conn, 3, clk),
		customer: c.ID,
	}
}

func (e *testEnv) seedProduct(t *testing.T, sku, price string, stock int) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, "", decimal.RequireFromString(price), stock, t0)
	require.NoError(t, err)
	created, err := e.products.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func (e *testEnv) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := e.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock()
}

func (e *testEnv) useCase() *application.OrderUseCase {
	return application.NewOrderUseCase(e.uow, nil, nil, e.clock, logger.NewNop())
}

func TestGormOrderRepository_SaveAndLoad(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := domain.NewOrder(env.customer, env.clock)
	require.NoError(t, err)
	for _, line := range []struct {
		product uint
		price   string
		qty     int
	}{{1, "19.99", 2}, {2, "0.05", 3}, {1, "19.99", 1}} {
		item, err := domain.NewOrderItem(line.product, "p", decimal.RequireFromString(line.price), line.qty)
		require.NoError(t, err)
		require.NoError(t, order.AddItem(item))
	}

	saved, err := env.orders.Save(ctx, order)
	require.NoError(t, err)
	require.NotZero(t, saved.ID())
	assert.Equal(t, "60.12", saved.Total().StringFixed(2))

	items := saved.Items()
	require.Len(t, items, 3)
	for i, item := range items {
		assert.NotZero(t, item.ID())
		assert.Equal(t, i+1, item.Line())
	}

	loaded, err := env.orders.GetByIDForUpdate(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, loaded.Status())
	assert.True(t, loaded.Total().Equal(saved.Total()))
}

func TestGormOrderRepository_UpdateStatusAndItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, _ := domain.NewOrder(env.customer, env.clock)
	item, _ := domain.NewOrderItem(1, "p", decimal.NewFromInt(2), 2)
	require.NoError(t, order.AddItem(item))
	saved, err := env.orders.Save(ctx, order)
	require.NoError(t, err)

	require.NoError(t, saved.ChangeItemQuantity(1, 5))
	require.NoError(t, saved.Confirm())
	updated, err := env.orders.Save(ctx, saved)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status())
	assert.Equal(t, "10", updated.Total().String())
	assert.Equal(t, saved.Items()[0].ID(), updated.Items()[0].ID())
}

func TestGormOrderRepository_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.GetByID(context.Background(), 404)
	assert.True(t, apperrors.HasReason(err, domain.ReasonOrderNotFound))
}

func TestGormOrderRepository_ListByCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 3; i++ {
		order, _ := domain.NewOrder(env.customer, env.clock)
		item, _ := domain.NewOrderItem(1, "p", decimal.NewFromInt(1), 1)
		require.NoError(t, order.AddItem(item))
		saved, err := env.orders.Save(ctx, order)
		require.NoError(t, err)
		ids = append(ids, saved.ID())
	}

	orders, err := env.orders.ListByCustomer(ctx, env.customer)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, ids[2], orders[0].ID())
	assert.Len(t, orders[0].Items(), 1)

	none, err := env.orders.ListByCustomer(ctx, env.customer+1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCustomerLookup(t *testing.T) {
	env := newTestEnv(t)
	lookup := NewCustomerLookup(customeradapters.NewGormCustomerRepository(env.db))

	info, err := lookup.FindByID(context.Background(), env.customer)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", info.Name)

	_, err = lookup.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestPlaceOrder_CommitsStockAndOrderTogether(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "P1", "19.99", 5)

	order, err := env.useCase().PlaceOrder(context.Background(), application.PlaceOrderInput{
		CustomerID: env.customer,
		Items:      []application.PlaceOrderItem{{ProductID: p.ID(), Quantity: 5}},
	})
	require.NoError(t, err)

	assert.Equal(t, "99.95", order.Total().String())
	assert.Equal(t, 0, env.stock(t, p.ID()))

	stored, err := env.orders.GetByID(context.Background(), order.ID())
	require.NoError(t, err)
	assert.Equal(t, "Product P1", stored.Items()[0].ProductName())
}

func TestPlaceOrder_RollsBackOnLaterFailure(t *testing.T) {
	env := newTestEnv(t)
	first := env.seedProduct(t, "P1", "1.00", 5)
	second := env.seedProduct(t, "P2", "2.00", 1)

	_, err := env.useCase().PlaceOrder(context.Background(), application.PlaceOrderInput{
		CustomerID: env.customer,
		Items: []application.PlaceOrderItem{
			{ProductID: first.ID(), Quantity: 3},
			{ProductID: second.ID(), Quantity: 2},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, env.stock(t, first.ID()))
	assert.Equal(t, 1, env.stock(t, second.ID()))

	var count int64
	require.NoError(t, env.db.Model(&OrderModel{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&OrderItemModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrder_ConcurrentPlacementsNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "LTD", "10.00", 10)
	uc := env.useCase()

	var (
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			_, err := uc.PlaceOrder(context.Background(), application.PlaceOrderInput{
				CustomerID: env.customer,
				Items:      []application.PlaceOrderItem{{ProductID: p.ID(), Quantity: 3}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return nil
			}
			if apperrors.HasReason(err, domain.ReasonInsufficientStock) {
				rejected++
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, env.stock(t, p.ID()))
}

func TestGormUnitOfWork_RollsBackOnError(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedProduct(t, "P1", "1.00", 5)

	err := env.uow.Do(context.Background(), func(ctx context.Context, repos ports.Repositories) error {
		locked, err := repos.Products.GetByIDForUpdate(ctx, p.ID())
		if err != nil {
			return err
		}
		reduced, err := locked.ReduceStock(5, t0)
		if err != nil {
			return err
		}
		if err := repos.Products.Save(ctx, reduced); err != nil {
			return err
		}
		return domain.ErrEmptyOrder
	})
	require.ErrorIs(t, err, domain.ErrEmptyOrder)
	assert.Equal(t, 5, env.stock(t, p.ID()))
}

type recordingPublisher struct {
	keys     []string
	messages []interface{}
}

func (r *recordingPublisher) Publish(ctx context.Context, key string, message interface{}) error {
	r.keys = append(r.keys, key)
	r.messages = append(r.messages, message)
	return nil
}

func TestEventPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewEventPublisher(rec)

	order, err := domain.RestoreOrder(domain.OrderSnapshot{
		ID:         4,
		CustomerID: 2,
		Status:     domain.OrderStatusConfirmed,
		Items: []domain.OrderItemSnapshot{
			{ID: 1, Line: 1, ProductID: 9, ProductName: "A", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 5},
		},
		CreatedAt: t0,
		UpdatedAt: t0.Add(time.Hour),
	}, clock.NewFixed(t0))
	require.NoError(t, err)

	ctx := logger.WithTraceIDContext(context.Background(), "trace-1")
	require.NoError(t, pub.PublishOrderPlaced(ctx, order))
	require.NoError(t, pub.PublishOrderStatusChanged(ctx, order, domain.OrderStatusPending))

	assert.Equal(t, []string{events.RoutingKeyOrderPlaced, events.RoutingKeyOrderStatusChanged}, rec.keys)

	placed := rec.messages[0].(*events.OrderPlacedEvent)
	assert.Equal(t, "99.95", placed.Payload.Total)
	assert.Equal(t, "trace-1", placed.TraceID)
	assert.Equal(t, []events.OrderLinePayload{{ProductID: 9, Quantity: 5, UnitPrice: "19.99", Subtotal: "99.95"}}, placed.Payload.Items)

	changed := rec.messages[1].(*events.OrderStatusChangedEvent)
	assert.Equal(t, "PENDING", changed.Payload.From)
	assert.Equal(t, "CONFIRMED", changed.Payload.To)
	assert.Equal(t, t0.Add(time.Hour), changed.Payload.ChangedAt)
}

type fakeShipments struct {
	shipped   []uint
	delivered []uint
	err       error
}

func (f *fakeShipments) ShipOrder(ctx context.Context, id uint) (*domain.Order, error) {
	f.shipped = append(f.shipped, id)
	return nil, f.err
}

func (f *fakeShipments) DeliverOrder(ctx context.Context, id uint) (*domain.Order, error) {
	f.delivered = append(f.delivered, id)
	return nil, f.err
}

func shipmentDelivery(t *testing.T, key string, orderID uint) rabbitmq.Delivery {
	t.Helper()
	body, err := json.Marshal(events.ShipmentEvent{Payload: events.ShipmentPayload{OrderID: orderID, TrackingID: "TRK"}})
	require.NoError(t, err)
	return rabbitmq.Delivery{RoutingKey: key, Body: body}
}

func TestFulfillmentConsumer_HandleDelivery(t *testing.T) {
	handler := &fakeShipments{}
	c := &FulfillmentConsumer{handler: handler, log: logger.NewNop()}
	ctx := context.Background()

	require.NoError(t, c.HandleDelivery(ctx, shipmentDelivery(t, events.RoutingKeyShipmentDispatched, 3)))
	require.NoError(t, c.HandleDelivery(ctx, shipmentDelivery(t, events.RoutingKeyShipmentDelivered, 3)))
	assert.Equal(t, []uint{3}, handler.shipped)
	assert.Equal(t, []uint{3}, handler.delivered)

	// malformed bodies are dropped rather than redelivered
	assert.NoError(t, c.HandleDelivery(ctx, rabbitmq.Delivery{RoutingKey: events.RoutingKeyShipmentDispatched, Body: []byte("{")}))
}

func TestFulfillmentConsumer_IgnoresStaleEvents(t *testing.T) {
	ctx := context.Background()

	stale := &fakeShipments{err: domain.NewIllegalStateTransition(domain.OrderStatusDelivered, domain.OrderStatusShipped)}
	c := &FulfillmentConsumer{handler: stale, log: logger.NewNop()}
	assert.NoError(t, c.HandleDelivery(ctx, shipmentDelivery(t, events.RoutingKeyShipmentDispatched, 3)))

	failing := &fakeShipments{err: apperrors.NewInternal("db down", nil)}
	c = &FulfillmentConsumer{handler: failing, log: logger.NewNop()}
	assert.Error(t, c.HandleDelivery(ctx, shipmentDelivery(t, events.RoutingKeyShipmentDelivered, 3)))
}
