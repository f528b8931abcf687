package main

import (
	"context"

	"go.uber.org/zap"

	catalogadapters "backoffice/internal/catalog/adapters"
	catalogports "backoffice/internal/catalog/ports"
	ordersadapters "backoffice/internal/orders/adapters"
	ordersports "backoffice/internal/orders/ports"
	"backoffice/pkg/config"
	"backoffice/pkg/db"
	"backoffice/pkg/lock"
	"backoffice/pkg/logger"
	"backoffice/pkg/mongodb"
)

// stores groups the repositories of the selected driver
type stores struct {
	categories catalogports.CategoryRepository
	products   catalogports.ProductRepository
	orders     ordersports.OrderRepository
	close      func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return openPostgres(cfg, log)
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return &stores{
			categories: catalogadapters.NewMemoryCategoryRepository(),
			products:   catalogadapters.NewMemoryProductRepository(),
			orders:     ordersadapters.NewMemoryOrderRepository(),
			close:      func(context.Context) error { return nil },
		}, nil
	default:
		return openMongo(ctx, cfg, log)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	client, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		return nil, err
	}
	log.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))

	products := catalogadapters.NewMongoProductRepository(client)
	if err := products.EnsureIndexes(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	orders := ordersadapters.NewMongoOrderRepository(client)
	if err := orders.EnsureIndexes(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}

	return &stores{
		categories: catalogadapters.NewMongoCategoryRepository(client),
		products:   products,
		orders:     orders,
		close:      client.Close,
	}, nil
}

func openPostgres(cfg *config.Config, log *logger.Logger) (*stores, error) {
	conn, err := db.NewConnection(db.Config{DSN: cfg.DSN(), Timeout: cfg.DBTimeout}, log)
	if err != nil {
		return nil, err
	}
	log.Info("connected to postgres", zap.String("database", cfg.DBName))

	categories := catalogadapters.NewPostgresCategoryRepository(conn)
	products := catalogadapters.NewPostgresProductRepository(conn)
	orders := ordersadapters.NewPostgresOrderRepository(conn)

	// products reference categories
	for _, migrate := range []func() error{categories.Migrate, products.Migrate, orders.Migrate} {
		if err := migrate(); err != nil {
			_ = db.Close(conn)
			return nil, err
		}
	}

	return &stores{
		categories: categories,
		products:   products,
		orders:     orders,
		close:      func(context.Context) error { return db.Close(conn) },
	}, nil
}

// openLocker returns a Redis lock when REDIS_ADDR is set, an in-process one otherwise
func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (lock.Locker, func() error) {
	if cfg.RedisAddr == "" {
		return lock.NewKeyedMutex(), func() error { return nil }
	}

	locker, err := lock.NewRedisLocker(ctx, lock.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.ServiceName + ":",
		TTL:      cfg.LockTTL,
	})
	if err != nil {
		log.Warn("redis unavailable, falling back to in-process reconciliation lock", zap.Error(err))
		return lock.NewKeyedMutex(), func() error { return nil }
	}
	log.Info("using redis reconciliation lock", zap.String("addr", cfg.RedisAddr))
	return locker, locker.Close
}
