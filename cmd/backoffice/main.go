// Package main Clothing Store Back-Office API
//
// REST API for categories, products and orders, with stock reconciliation and a dashboard.
//
//	@title			Back-Office API
//	@version		1.0
//	@description	Catalog, orders and inventory of a clothing store
//
//	@contact.name	API Support
//	@contact.email	support@example.com
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//	@schemes	http https
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	inventoryv1 "backoffice/api/inventory/v1"
	_ "backoffice/docs/swagger"
	catalogapp "backoffice/internal/catalog/application"
	cataloginfra "backoffice/internal/catalog/infrastructure"
	inventoryadapters "backoffice/internal/inventory/adapters"
	inventoryapp "backoffice/internal/inventory/application"
	inventoryinfra "backoffice/internal/inventory/infrastructure"
	inventoryports "backoffice/internal/inventory/ports"
	ordersadapters "backoffice/internal/orders/adapters"
	ordersapp "backoffice/internal/orders/application"
	ordersinfra "backoffice/internal/orders/infrastructure"
	ordersports "backoffice/internal/orders/ports"
	"backoffice/pkg/config"
	"backoffice/pkg/events"
	grpcpkg "backoffice/pkg/grpc"
	"backoffice/pkg/kafka"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"
	"backoffice/pkg/middleware"
	"backoffice/pkg/rabbitmq"
	pkgtls "backoffice/pkg/tls"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("backoffice", "info").Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.NewWithFile(cfg.ServiceName, cfg.LogLevel, logger.FileOptions{Path: cfg.LogFile})
	defer log.Sync()

	log.Info("starting back-office service",
		zap.String("store", cfg.StoreDriver),
		zap.String("broker", cfg.EventsBroker),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}

	locker, closeLocker := openLocker(ctx, cfg, log)

	bus, closeBus := openBus(ctx, cfg, log)

	// Publishers stay nil interfaces when no broker is available
	var orderPublisher ordersports.EventPublisher
	var stockPublisher inventoryports.StockPublisher
	if bus != nil {
		orderPublisher = ordersadapters.NewEventPublisher(bus, m, log)
		stockPublisher = inventoryadapters.NewStockPublisher(bus, m)
	}

	reconciler := inventoryapp.NewReconciler(st.products, st.orders, locker, stockPublisher, m, log)
	dashboard := inventoryapp.NewDashboardUseCase(st.products, st.orders)

	categoryUseCase := catalogapp.NewCategoryUseCase(st.categories, st.products, log)
	productUseCase := catalogapp.NewProductUseCase(st.products, st.categories, st.orders, reconciler, log)
	orderUseCase := ordersapp.NewOrderUseCase(st.orders, orderPublisher, reconciler, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	cataloginfra.NewHTTPHandler(categoryUseCase, productUseCase).RegisterRoutes(api)
	ordersinfra.NewHTTPHandler(orderUseCase).RegisterRoutes(api)
	inventoryinfra.NewHTTPHandler(dashboard, reconciler).RegisterRoutes(api)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := newHTTPServer(cfg, log, router)

	grpcServer := setupGRPCServer(cfg, log, m, dashboard, reconciler)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC", zap.Error(err))
	}
	go func() {
		log.Info("gRPC server listening on :" + cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("gRPC server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", zap.Error(err))
	}
	cancel()

	if err := closeBus(); err != nil {
		log.Error("failed to close event bus", zap.Error(err))
	}
	if err := closeLocker(); err != nil {
		log.Error("failed to close lock client", zap.Error(err))
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error("failed to close store", zap.Error(err))
	}

	log.Info("servers stopped")
}

// openBus connects the configured broker. A broker that cannot be reached disables events.
func openBus(ctx context.Context, cfg *config.Config, log *logger.Logger) (events.Bus, func() error) {
	noop := func() error { return nil }

	switch cfg.EventsBroker {
	case config.BrokerKafka:
		producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: events.Exchange}, log)
		if err != nil {
			log.Warn("failed to create kafka producer, events will be disabled", zap.Error(err))
			return nil, noop
		}
		return producer, producer.Close

	case config.BrokerRabbitMQ:
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, cfg.ServiceName, log)
		if err != nil {
			log.Warn("failed to connect to RabbitMQ, events will be disabled", zap.Error(err))
			return nil, noop
		}

		publisher, err := rabbitmq.NewPublisher(conn, events.Exchange, log)
		if err != nil {
			log.Warn("failed to create publisher, events will be disabled", zap.Error(err))
			_ = conn.Close()
			return nil, noop
		}

		consumer, err := inventoryadapters.NewStockAlertConsumer(conn, cfg.LowStockThreshold, log)
		if err != nil {
			log.Warn("failed to create stock alert consumer", zap.Error(err))
		} else if err := consumer.Start(ctx); err != nil {
			log.Warn("failed to start stock alert consumer", zap.Error(err))
		}

		return publisher, conn.Close

	default:
		log.Info("events disabled")
		return nil, noop
	}
}

func newHTTPServer(cfg *config.Config, log *logger.Logger, router *gin.Engine) *http.Server {
	if !cfg.TLSEnabled {
		server := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      router,
			ReadTimeout:  cfg.HTTPTimeout,
			WriteTimeout: cfg.HTTPTimeout,
		}
		go func() {
			log.Info("HTTP server listening on http://localhost:" + cfg.HTTPPort)
			log.Info("Swagger UI: http://localhost:" + cfg.HTTPPort + "/swagger/index.html")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("HTTP server error", zap.Error(err))
			}
		}()
		return server
	}

	tlsConfig, err := pkgtls.ServerConfig(pkgtls.Files{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}, false)
	if err != nil {
		log.Fatal("failed to load TLS config", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      router,
		TLSConfig:    tlsConfig,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}
	go func() {
		log.Info("HTTPS server listening on https://localhost:" + cfg.HTTPSPort)
		log.Info("Swagger UI: https://localhost:" + cfg.HTTPSPort + "/swagger/index.html")
		if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTPS server error", zap.Error(err))
		}
	}()
	return server
}

func setupGRPCServer(
	cfg *config.Config,
	log *logger.Logger,
	m *metrics.Metrics,
	dashboard *inventoryapp.DashboardUseCase,
	reconciler *inventoryapp.Reconciler,
) *grpc.Server {
	var opts []grpc.ServerOption

	opts = append(opts, grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(log, m, cfg.GRPCTimeout)))

	if cfg.GRPCMTLSEnabled {
		tlsConfig, err := pkgtls.ServerConfig(pkgtls.Files{
			CertFile: cfg.GRPCServerCert,
			KeyFile:  cfg.GRPCServerKey,
			CAFile:   cfg.TLSCAFile,
		}, true)
		if err != nil {
			log.Fatal("failed to load TLS config", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConfig)))
		log.Info("gRPC mTLS enabled")
	}

	server := grpc.NewServer(opts...)
	inventoryv1.RegisterInventoryServiceServer(server, inventoryinfra.NewGRPCServer(dashboard, reconciler))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(inventoryv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server
}
