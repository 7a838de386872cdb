package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	orderspb "go-shop/api/orders/v1"
	catalogadapters "go-shop/internal/catalog/adapters"
	catalogapp "go-shop/internal/catalog/application"
	cataloghttp "go-shop/internal/catalog/infrastructure"
	customeradapters "go-shop/internal/customers/adapters"
	customerapp "go-shop/internal/customers/application"
	customerhttp "go-shop/internal/customers/infrastructure"
	orderadapters "go-shop/internal/orders/adapters"
	orderapp "go-shop/internal/orders/application"
	ordertransport "go-shop/internal/orders/infrastructure"
	"go-shop/pkg/clock"
	"go-shop/pkg/config"
	"go-shop/pkg/db"
	grpcpkg "go-shop/pkg/grpc"
	"go-shop/pkg/logger"
	"go-shop/pkg/metrics"
	"go-shop/pkg/middleware"
	"go-shop/pkg/observability"
	"go-shop/pkg/tls"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.LoadForService("SHOP")

	// Initialize logger
	log := logger.NewWithFormat("shop", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting shop service", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.OtelEndpoint,
		Insecure:       cfg.OtelInsecure,
	})
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Connect to database
	dbConn, err := db.NewConnection(db.Config{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DSN(),
		MaxOpenConns: cfg.DBMaxOpenConns,
		Timeout:      cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("connected to database", zap.String("driver", cfg.DBDriver))

	clk := clock.System{}
	customerRepo := customeradapters.NewGormCustomerRepository(dbConn)
	productRepo := catalogadapters.NewGormProductRepository(dbConn)
	orderRepo := orderadapters.NewGormOrderRepository(dbConn, clk)
	if err := migrate(customerRepo, productRepo, orderRepo); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Connect to the events broker
	bus, err := newBroker(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to events broker", zap.Error(err))
	}
	defer bus.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(registry)

	// Use cases
	customers := customerapp.NewCustomerUseCase(customerRepo, customeradapters.NewEventPublisher(bus.customers), log.Named("customers"))
	catalog := catalogapp.NewProductUseCase(productRepo, catalogadapters.NewEventPublisher(bus.catalog), clk, log.Named("catalog"))
	orders := orderapp.NewOrderUseCase(
		orderadapters.NewGormUnitOfWork(dbConn, cfg.PlacementMaxAttempts, clk),
		orderadapters.NewEventPublisher(bus.orders),
		orderMetrics,
		clk,
		log.Named("orders"),
	)

	// HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())
	if cfg.MetricsEnabled {
		router.Use(metrics.NewHTTPMetrics(registry, "api").Middleware())
		router.GET("/metrics", gin.WrapH(metrics.HandlerFor(registry)))
	}

	api := router.Group("/api/v1")
	customerhttp.NewHTTPHandler(customers).RegisterRoutes(api)
	cataloghttp.NewHTTPHandler(catalog).RegisterRoutes(api)
	ordertransport.NewHTTPHandler(orders).RegisterRoutes(api)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := dbConn.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	// gRPC server
	grpcServer, err := setupGRPCServer(cfg, log, orders)
	if err != nil {
		log.Fatal("failed to configure gRPC server", zap.Error(err))
	}
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("gRPC server listening on :" + cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})

	if bus.rabbit != nil {
		consumer, err := orderadapters.NewFulfillmentConsumer(bus.rabbit, orders, log.Named("fulfillment"))
		if err != nil {
			log.Fatal("failed to create fulfillment consumer", zap.Error(err))
		}
		if err := consumer.Start(gctx); err != nil {
			log.Fatal("failed to start fulfillment consumer", zap.Error(err))
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("servers stopped")
}

type migrator interface {
	Migrate() error
}

func migrate(repos ...migrator) error {
	for _, r := range repos {
		if err := r.Migrate(); err != nil {
			return err
		}
	}
	return nil
}

func setupGRPCServer(cfg *config.Config, log *logger.Logger, useCase *orderapp.OrderUseCase) (*grpc.Server, error) {
	var opts []grpc.ServerOption

	opts = append(opts, grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(log, cfg.GRPCTimeout)))

	// Configure mTLS if enabled
	if cfg.GRPCMTLSEnabled {
		tlsConfig, err := tls.ServerConfig(tls.Files{
			CertFile: cfg.GRPCServerCert,
			KeyFile:  cfg.GRPCServerKey,
			CAFile:   cfg.TLSCAFile,
		}, true)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConfig)))
		log.Info("gRPC mTLS enabled")
	}

	server := grpc.NewServer(opts...)
	orderspb.RegisterOrderServiceServer(server, ordertransport.NewGRPCServer(useCase))

	return server, nil
}
