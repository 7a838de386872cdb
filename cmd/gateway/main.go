// Command gateway serves the public REST API of go-shop and forwards order
// requests to the shop service over gRPC.
//
//	@title			go-shop Gateway API
//	@version		1.0
//	@description	Public REST gateway for the go-shop order service
//	@host			localhost:8443
//	@BasePath		/
//	@schemes		https http
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	orderspb "go-shop/api/orders/v1"
	_ "go-shop/docs/swagger"
	"go-shop/internal/gateway/clients"
	"go-shop/internal/gateway/handlers"
	"go-shop/pkg/config"
	"go-shop/pkg/logger"
	"go-shop/pkg/metrics"
	"go-shop/pkg/middleware"
	pkgtls "go-shop/pkg/tls"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.LoadForService("GATEWAY")

	log := logger.NewWithFormat("gateway", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	conns, err := clients.NewClients(cfg)
	if err != nil {
		log.Fatal("failed to dial shop service", zap.Error(err))
	}
	defer conns.Close()
	log.Info("shop client ready", zap.String("addr", cfg.ShopGRPCAddr))

	server, err := newServer(cfg, newRouter(cfg, log, conns.Orders))
	if err != nil {
		log.Fatal("failed to configure gateway server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, log, server); err != nil {
		log.Error("gateway stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("gateway stopped")
}

func newRouter(cfg *config.Config, log *logger.Logger, orders orderspb.OrderServiceClient) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		middleware.TraceID(),
		middleware.RequestLogger(log),
		middleware.ErrorHandler(log),
		middleware.CORS(),
	)

	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		router.Use(metrics.NewHTTPMetrics(registry, "gateway").Middleware())
		router.GET("/metrics", gin.WrapH(metrics.HandlerFor(registry)))
	}

	handlers.NewHandler(orders).RegisterRoutes(router.Group("/api/v1"))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})

	return router
}

// newServer listens on HTTPSPort when TLS is enabled and on HTTPPort otherwise
func newServer(cfg *config.Config, handler http.Handler) (*http.Server, error) {
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}
	if !cfg.TLSEnabled {
		return server, nil
	}

	tlsConfig, err := pkgtls.ServerConfig(pkgtls.Files{
		CertFile: cfg.TLSCertFile,
		KeyFile:  cfg.TLSKeyFile,
	}, false)
	if err != nil {
		return nil, err
	}
	server.Addr = ":" + cfg.HTTPSPort
	server.TLSConfig = tlsConfig
	return server, nil
}

func serve(ctx context.Context, log *logger.Logger, server *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if server.TLSConfig != nil {
			log.Info("HTTPS server listening", zap.String("addr", server.Addr))
			err = server.ListenAndServeTLS("", "")
		} else {
			log.Info("HTTP server listening", zap.String("addr", server.Addr))
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gateway...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
