// Package orderspb defines the shop.orders.v1.OrderService gRPC contract.
// Messages travel as google.protobuf.Struct values carrying the JSON form of
// the types below.
package orderspb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"go-shop/pkg/errors"
	grpcpkg "go-shop/pkg/grpc"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "shop.orders.v1.OrderService"

// Method names
const (
	MethodPlaceOrder   = "PlaceOrder"
	MethodGetOrder     = "GetOrder"
	MethodConfirmOrder = "ConfirmOrder"
	MethodShipOrder    = "ShipOrder"
	MethodDeliverOrder = "DeliverOrder"
	MethodCancelOrder  = "CancelOrder"

	MethodListCustomerOrders = "ListCustomerOrders"
)

// PlaceOrderRequest asks for a new order
type PlaceOrderRequest struct {
	CustomerID uint64        `json:"customer_id"`
	Items      []LineRequest `json:"items"`
}

// LineRequest is one requested product and quantity
type LineRequest struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// OrderIDRequest addresses one order
type OrderIDRequest struct {
	ID uint64 `json:"id"`
}

// CustomerIDRequest addresses one customer
type CustomerIDRequest struct {
	ID uint64 `json:"id"`
}

// OrderList carries a customer's orders, newest first
type OrderList struct {
	Orders []Order `json:"orders"`
}

// Order is the wire form of an order. Money is carried as decimal strings.
type Order struct {
	ID         uint64      `json:"id"`
	CustomerID uint64      `json:"customer_id"`
	Status     string      `json:"status"`
	Total      string      `json:"total"`
	Items      []OrderLine `json:"items"`
	CreatedAt  string      `json:"created_at"`
	UpdatedAt  string      `json:"updated_at"`
}

// OrderLine is the wire form of an order line
type OrderLine struct {
	ID          uint64 `json:"id"`
	Line        int32  `json:"line"`
	ProductID   uint64 `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int32  `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

// OrderServiceServer is the server API for OrderService
type OrderServiceServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*Order, error)
	GetOrder(context.Context, *OrderIDRequest) (*Order, error)
	ConfirmOrder(context.Context, *OrderIDRequest) (*Order, error)
	ShipOrder(context.Context, *OrderIDRequest) (*Order, error)
	DeliverOrder(context.Context, *OrderIDRequest) (*Order, error)
	CancelOrder(context.Context, *OrderIDRequest) (*Order, error)
	ListCustomerOrders(context.Context, *CustomerIDRequest) (*OrderList, error)
}

// OrderServiceClient is the client API for OrderService
type OrderServiceClient interface {
	PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*Order, error)
	GetOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error)
	ConfirmOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error)
	ShipOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error)
	DeliverOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error)
	CancelOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error)
	ListCustomerOrders(ctx context.Context, in *CustomerIDRequest, opts ...grpc.CallOption) (*OrderList, error)
}

// ServiceDesc describes OrderService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodPlaceOrder, Handler: unaryHandler(MethodPlaceOrder, OrderServiceServer.PlaceOrder)},
		{MethodName: MethodGetOrder, Handler: unaryHandler(MethodGetOrder, OrderServiceServer.GetOrder)},
		{MethodName: MethodConfirmOrder, Handler: unaryHandler(MethodConfirmOrder, OrderServiceServer.ConfirmOrder)},
		{MethodName: MethodShipOrder, Handler: unaryHandler(MethodShipOrder, OrderServiceServer.ShipOrder)},
		{MethodName: MethodDeliverOrder, Handler: unaryHandler(MethodDeliverOrder, OrderServiceServer.DeliverOrder)},
		{MethodName: MethodCancelOrder, Handler: unaryHandler(MethodCancelOrder, OrderServiceServer.CancelOrder)},
		{MethodName: MethodListCustomerOrders, Handler: unaryHandler(MethodListCustomerOrders, OrderServiceServer.ListCustomerOrders)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/orders/v1/orders.proto",
}

// RegisterOrderServiceServer registers srv on s
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(OrderServiceServer, context.Context, *Req) (*Resp, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + method

	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			var r Req
			if err := grpcpkg.FromStruct(req.(*structpb.Struct), &r); err != nil {
				return nil, errors.NewValidation("invalid request message", err.Error())
			}
			out, err := call(srv.(OrderServiceServer), ctx, &r)
			if err != nil {
				return nil, err
			}
			return grpcpkg.ToStruct(out)
		}

		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		return interceptor(ctx, in, info, handler)
	}
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderServiceClient creates an OrderService client over cc
func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc: cc}
}

func (c *orderServiceClient) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*Order, error) {
	return invoke[Order](ctx, c.cc, MethodPlaceOrder, in, opts)
}

func (c *orderServiceClient) GetOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error) {
	return invoke[Order](ctx, c.cc, MethodGetOrder, in, opts)
}

func (c *orderServiceClient) ConfirmOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error) {
	return invoke[Order](ctx, c.cc, MethodConfirmOrder, in, opts)
}

func (c *orderServiceClient) ShipOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error) {
	return invoke[Order](ctx, c.cc, MethodShipOrder, in, opts)
}

func (c *orderServiceClient) DeliverOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error) {
	return invoke[Order](ctx, c.cc, MethodDeliverOrder, in, opts)
}

func (c *orderServiceClient) CancelOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*Order, error) {
	return invoke[Order](ctx, c.cc, MethodCancelOrder, in, opts)
}

func (c *orderServiceClient) ListCustomerOrders(ctx context.Context, in *CustomerIDRequest, opts ...grpc.CallOption) (*OrderList, error) {
	return invoke[OrderList](ctx, c.cc, MethodListCustomerOrders, in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	req, err := grpcpkg.ToStruct(in)
	if err != nil {
		return nil, err
	}

	resp := new(structpb.Struct)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, opts...); err != nil {
		return nil, err
	}

	out := new(Resp)
	if err := grpcpkg.FromStruct(resp, out); err != nil {
		return nil, err
	}
	return out, nil
}
