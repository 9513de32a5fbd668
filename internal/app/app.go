// Package app assembles the cart store and its adapters from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/contracts"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/notify"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage/memory"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage/postgres"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage/sqlite"
)

type publisher interface {
	checkout.CartEventsPublisher
	Close() error
}

// App holds the wired store. Close releases everything Build opened.
type App struct {
	Config   config.Config
	Cart     *cart.Service
	Checkout *checkout.Simulator
	Board    *notify.Board
	Catalog  *catalog.Catalog
	Logger   *zap.Logger

	publisher publisher
	closers   []func() error
}

// Build wires storage, the cart service, notifications, the event publisher
// and the checkout simulator. Extra notifiers receive every notification in
// addition to the board and the log.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger, extra ...notify.Notifier) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	kv, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Board = notify.NewBoard(cfg.NotificationTTL)
	a.closers = append(a.closers, func() error { a.Board.Close(); return nil })
	notifiers := append([]notify.Notifier{a.Board, notify.NewLogNotifier(logger)}, extra...)
	notifier := notify.Multi(notifiers...)

	var repo cart.Repository
	if cfg.CartPolicy() == cart.PolicyPersisted {
		repo = cart.NewKVRepository(kv, cfg.StorageKey)
	}
	svc, err := cart.NewService(cart.ServiceOptions{
		Policy:     cfg.CartPolicy(),
		Repository: repo,
		Notifier:   notifier,
		Logger:     logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create cart service: %w", err)
	}
	if err := svc.Open(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("open cart: %w", err)
	}
	a.Cart = svc

	pub, err := a.openPublisher(kv)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.publisher = pub

	a.Checkout = checkout.NewSimulator(svc, checkout.Options{
		Delay:     cfg.CheckoutDelay,
		Notifier:  notifier,
		Publisher: pub,
		Logger:    logger,
	})

	logger.Info("cart store ready",
		zap.String("policy", string(cfg.CartPolicy())),
		zap.String("storage", cfg.StorageDriver),
		zap.Int("items", svc.TotalItemCount()))
	return a, nil
}

// Close waits for a running checkout to finish and then releases resources
// in reverse order of acquisition.
func (a *App) Close() error {
	if a.Checkout != nil {
		<-a.Checkout.Done()
	}

	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
		a.publisher = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func (a *App) openStorage(ctx context.Context) (storage.KV, error) {
	switch a.Config.StorageDriver {
	case config.StorageSQLite:
		sqlDB, err := db.OpenSQLite(ctx, a.Config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)
		if err := a.migrateSQLite(sqlDB); err != nil {
			return nil, err
		}
		return sqlite.New(sqlDB), nil

	case config.StoragePostgres:
		if a.Config.RunMigrations {
			if err := db.RunMigrations(a.Config.DatabaseDSN, a.Logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, a.Config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, closePool(pool))
		return postgres.New(pool), nil

	default:
		return memory.New(), nil
	}
}

func (a *App) migrateSQLite(sqlDB *sql.DB) error {
	if !a.Config.RunMigrations {
		return nil
	}
	if err := db.RunSQLiteMigrations(sqlDB, a.Logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func closePool(pool *pgxpool.Pool) func() error {
	return func() error {
		pool.Close()
		return nil
	}
}

func (a *App) openPublisher(kv storage.KV) (publisher, error) {
	if a.Config.RabbitMQURL == "" {
		return events.NopPublisher{}, nil
	}

	conn, err := events.Dial(a.Config.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	a.closers = append(a.closers, closeConn(conn))

	pub, err := events.NewRabbitCartEventsPublisher(conn, events.NewSequenceRepository(kv), events.PublisherOptions{
		PublishEnveloped: a.Config.PublishEnveloped,
		Producer:         contracts.CartServiceProducer,
		PartitionKey:     a.Config.StorageKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create cart publisher: %w", err)
	}
	return pub, nil
}

func closeConn(conn *amqp.Connection) func() error {
	return func() error {
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("close rabbitmq: %w", err)
		}
		return nil
	}
}
