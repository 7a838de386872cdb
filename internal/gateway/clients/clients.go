package clients

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	orderspb "go-shop/api/orders/v1"
	"go-shop/pkg/config"
	grpcpkg "go-shop/pkg/grpc"
	"go-shop/pkg/tls"
)

// Clients holds all gRPC clients for the gateway
type Clients struct {
	Orders orderspb.OrderServiceClient

	shopConn *grpc.ClientConn
}

// NewClients creates all gRPC clients for the gateway
func NewClients(cfg *config.Config) (*Clients, error) {
	shopConn, err := createConnection(cfg, cfg.ShopGRPCAddr)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Orders:   orderspb.NewOrderServiceClient(shopConn),
		shopConn: shopConn,
	}, nil
}

// Close closes all gRPC connections
func (c *Clients) Close() error {
	if c.shopConn != nil {
		return c.shopConn.Close()
	}
	return nil
}

func createConnection(cfg *config.Config, addr string) (*grpc.ClientConn, error) {
	var opts []grpc.DialOption

	opts = append(opts, grpc.WithUnaryInterceptor(grpcpkg.UnaryClientInterceptor(cfg.GRPCTimeout)))

	// Configure TLS/mTLS
	if cfg.GRPCMTLSEnabled {
		tlsConfig, err := tls.ClientConfig(tls.Files{
			CertFile: cfg.GRPCClientCert,
			KeyFile:  cfg.GRPCClientKey,
			CAFile:   cfg.TLSCAFile,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	return grpc.NewClient(addr, opts...)
}
