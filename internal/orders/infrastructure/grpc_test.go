package infrastructure

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	orderspb "go-shop/api/orders/v1"
	"go-shop/internal/orders/domain"
	"go-shop/pkg/errors"
	grpcpkg "go-shop/pkg/grpc"
	"go-shop/pkg/logger"
)

func dialOrderService(t *testing.T, f *fixture) orderspb.OrderServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	server := grpc.NewServer(grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(logger.NewNop(), 5*time.Second)))
	orderspb.RegisterOrderServiceServer(server, NewGRPCServer(f.useCase))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(grpcpkg.UnaryClientInterceptor(5*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return orderspb.NewOrderServiceClient(conn)
}

func TestGRPCServer_PlaceAndTransition(t *testing.T) {
	f := newFixture(t)
	client := dialOrderService(t, f)
	ctx := context.Background()

	order, err := client.PlaceOrder(ctx, &orderspb.PlaceOrderRequest{
		CustomerID: uint64(f.customer),
		Items:      []orderspb.LineRequest{{ProductID: uint64(f.widget), Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", order.Status)
	assert.Equal(t, "59.97", order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int32(1), order.Items[0].Line)
	assert.Equal(t, int32(3), order.Items[0].Quantity)

	confirmed, err := client.ConfirmOrder(ctx, &orderspb.OrderIDRequest{ID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", confirmed.Status)

	cancelled, err := client.CancelOrder(ctx, &orderspb.OrderIDRequest{ID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	got, err := client.GetOrder(ctx, &orderspb.OrderIDRequest{ID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.Status)
}

func TestGRPCServer_ErrorsKeepTheirReason(t *testing.T) {
	f := newFixture(t)
	client := dialOrderService(t, f)
	ctx := context.Background()

	_, err := client.PlaceOrder(ctx, &orderspb.PlaceOrderRequest{
		CustomerID: uint64(f.customer),
		Items:      []orderspb.LineRequest{{ProductID: uint64(f.widget), Quantity: 9}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeUnprocessable))
	assert.True(t, errors.HasReason(err, domain.ReasonInsufficientStock))

	_, err = client.PlaceOrder(ctx, &orderspb.PlaceOrderRequest{
		CustomerID: uint64(f.customer),
		Items:      []orderspb.LineRequest{{ProductID: uint64(f.widget), Quantity: 0}},
	})
	assert.True(t, errors.HasReason(err, domain.ReasonInvalidQuantity))

	_, err = client.ShipOrder(ctx, &orderspb.OrderIDRequest{ID: 77})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.True(t, errors.HasReason(err, domain.ReasonOrderNotFound))
}

func TestGRPCServer_ListCustomerOrders(t *testing.T) {
	f := newFixture(t)
	client := dialOrderService(t, f)
	ctx := context.Background()

	empty, err := client.ListCustomerOrders(ctx, &orderspb.CustomerIDRequest{ID: uint64(f.customer)})
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)

	for i := 0; i < 2; i++ {
		_, err := client.PlaceOrder(ctx, &orderspb.PlaceOrderRequest{
			CustomerID: uint64(f.customer),
			Items:      []orderspb.LineRequest{{ProductID: uint64(f.widget), Quantity: 1}},
		})
		require.NoError(t, err)
	}

	list, err := client.ListCustomerOrders(ctx, &orderspb.CustomerIDRequest{ID: uint64(f.customer)})
	require.NoError(t, err)
	require.Len(t, list.Orders, 2)
	assert.Greater(t, list.Orders[0].ID, list.Orders[1].ID)
	assert.Equal(t, "19.99", list.Orders[0].Total)
	require.Len(t, list.Orders[1].Items, 1)
	assert.Equal(t, "Widget", list.Orders[1].Items[0].ProductName)

	_, err = client.ListCustomerOrders(ctx, &orderspb.CustomerIDRequest{ID: 404})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.True(t, errors.HasReason(err, domain.ReasonCustomerNotFound))

	_, err = client.ListCustomerOrders(ctx, &orderspb.CustomerIDRequest{})
	assert.True(t, errors.HasReason(err, domain.ReasonMissingCustomer))
}
