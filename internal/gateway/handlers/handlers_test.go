package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	orderspb "go-shop/api/orders/v1"
	"go-shop/pkg/errors"
	"go-shop/pkg/logger"
	"go-shop/pkg/middleware"
)

type fakeOrders struct {
	placed *orderspb.PlaceOrderRequest
	lastID uint64
	err    error
}

func (f *fakeOrders) order(id uint64, status string) (*orderspb.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &orderspb.Order{
		ID:         id,
		CustomerID: 1,
		Status:     status,
		Total:      "39.98",
		Items: []orderspb.OrderLine{
			{ID: 1, Line: 1, ProductID: 7, ProductName: "Widget", UnitPrice: "19.99", Quantity: 2, Subtotal: "39.98"},
		},
	}, nil
}

func (f *fakeOrders) PlaceOrder(_ context.Context, in *orderspb.PlaceOrderRequest, _ ...grpc.CallOption) (*orderspb.Order, error) {
	f.placed = in
	return f.order(10, "PENDING")
}

func (f *fakeOrders) GetOrder(_ context.Context, in *orderspb.OrderIDRequest, _ ...grpc.CallOption) (*orderspb.Order, error) {
	f.lastID = in.ID
	return f.order(in.ID, "PENDING")
}

func (f *fakeOrders) ConfirmOrder(_ context.Context, in *orderspb.OrderIDRequest, _ ...grpc.CallOption) (*orderspb.Order, error) {
	f.lastID = in.ID
	return f.order(in.ID, "CONFIRMED")
}

func (f *fakeOrders) ShipOrder(_ context.Context, in *orderspb.OrderIDRequest, _ ...grpc.CallOption) (*orderspb.Order, error) {
	f.lastID = in.ID
	return f.order(in.ID, "SHIPPED")
}

func (f *fakeOrders) DeliverOrder(_ context.Context, in *orderspb.OrderIDRequest, _ ...grpc.CallOption) (*orderspb.Order, error) {
	f.lastID = in.ID
	return f.order(in.ID, "DELIVERED")
}

func (f *fakeOrders) CancelOrder(_ context.Context, in *orderspb.OrderIDRequest, _ ...grpc.CallOption) (*orderspb.Order, error) {
	f.lastID = in.ID
	return f.order(in.ID, "CANCELLED")
}

func (f *fakeOrders) ListCustomerOrders(_ context.Context, in *orderspb.CustomerIDRequest, _ ...grpc.CallOption) (*orderspb.OrderList, error) {
	f.lastID = in.ID
	first, err := f.order(3, "DELIVERED")
	if err != nil {
		return nil, err
	}
	second, _ := f.order(4, "PENDING")
	return &orderspb.OrderList{Orders: []orderspb.Order{*first, *second}}, nil
}

func newRouter(client orderspb.OrderServiceClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.TraceID(), middleware.ErrorHandler(logger.NewNop()))
	NewHandler(client).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlaceOrder_ForwardsLines(t *testing.T) {
	client := &fakeOrders{}
	r := newRouter(client)

	w := serve(r, http.MethodPost, "/api/v1/orders", `{"customer_id":1,"items":[{"product_id":7,"quantity":2}]}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, client.placed)
	assert.Equal(t, uint64(1), client.placed.CustomerID)
	assert.Equal(t, []orderspb.LineRequest{{ProductID: 7, Quantity: 2}}, client.placed.Items)

	var resp struct {
		Data    OrderResponse `json:"data"`
		TraceID string        `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "39.98", resp.Data.Total)
	assert.Equal(t, "Widget", resp.Data.Items[0].ProductName)
	assert.NotEmpty(t, resp.TraceID)
}

func TestPlaceOrder_RendersRemoteError(t *testing.T) {
	client := &fakeOrders{
		err: errors.NewUnprocessable("insufficient stock for Widget", map[string]interface{}{
			"product": "Widget", "requested": "3", "available": "2",
		}).WithReason("INSUFFICIENT_STOCK"),
	}
	r := newRouter(client)

	w := serve(r, http.MethodPost, "/api/v1/orders", `{"customer_id":1,"items":[{"product_id":7,"quantity":3}]}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Reason)
}

func TestTransitions_UsePathID(t *testing.T) {
	tests := []struct {
		path   string
		status string
	}{
		{"/api/v1/orders/5/confirm", "CONFIRMED"},
		{"/api/v1/orders/5/ship", "SHIPPED"},
		{"/api/v1/orders/5/deliver", "DELIVERED"},
		{"/api/v1/orders/5/cancel", "CANCELLED"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			client := &fakeOrders{}
			w := serve(newRouter(client), http.MethodPost, tt.path, "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, uint64(5), client.lastID)
			var resp struct {
				Data OrderResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Data.Status)
		})
	}
}

func TestGetOrder_InvalidID(t *testing.T) {
	client := &fakeOrders{}
	w := serve(newRouter(client), http.MethodGet, "/api/v1/orders/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, client.lastID)
}

func TestListCustomerOrders(t *testing.T) {
	client := &fakeOrders{}
	w := serve(newRouter(client), http.MethodGet, "/api/v1/customers/9/orders", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(9), client.lastID)

	var resp struct {
		Data []OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "DELIVERED", resp.Data[0].Status)
	assert.Equal(t, uint64(4), resp.Data[1].ID)
}

func TestListCustomerOrders_Errors(t *testing.T) {
	client := &fakeOrders{}
	w := serve(newRouter(client), http.MethodGet, "/api/v1/customers/0/orders", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, client.lastID)

	client = &fakeOrders{err: errors.NewNotFound("customer", 9).WithReason("CUSTOMER_NOT_FOUND")}
	w = serve(newRouter(client), http.MethodGet, "/api/v1/customers/9/orders", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CUSTOMER_NOT_FOUND", resp.Error.Reason)
}
