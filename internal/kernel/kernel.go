// Package kernel assembles the storefront from Settings: backing stores,
// services and the HTTP handler. Commands in cmd/storefront boot it once
// and close it on exit.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/controllers"
	appgraphql "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auditlog"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/record"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"gorm.io/gorm"
)

// accountRateLimit is register/login attempts per client per minute.
const accountRateLimit = 20

// App is the booted application.
type App struct {
	Settings config.Settings
	Store    record.Store
	Queue    *queue.Queue
	Audit    *auditlog.Log
	Keys     *auth.Keys

	Ledger     *services.Ledger
	Catalog    *services.Catalog
	Customers  *services.Customers
	Dashboards *services.Dashboards
	Reconciler *services.Reconciler

	// DB is set only when RECORD_STORE=gorm.
	DB *gorm.DB

	closers []func() error
}

// Boot wires everything s selects. On error, whatever was opened is closed.
func Boot(ctx context.Context, s config.Settings) (_ *App, err error) {
	a := &App{Settings: s}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.setupLogging(ctx)

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Store = record.Observe(store, metrics.ObserveStoreOp)

	disk, err := storage.Open(ctx, storage.Options{
		Driver:    s.StorageDisk,
		LocalRoot: s.StorageLocalRoot,
		S3: storage.S3Options{
			Bucket:   s.S3.Bucket,
			Region:   s.S3.Region,
			Key:      s.S3.Key,
			Secret:   s.S3.Secret,
			Endpoint: s.S3.Endpoint,
		},
	})
	if err != nil {
		return nil, err
	}
	a.Audit = auditlog.New(disk, s.AuditLogDir)

	if a.Queue, err = a.openQueue(ctx); err != nil {
		return nil, err
	}
	statsCache, err := a.openCache(ctx)
	if err != nil {
		return nil, err
	}

	if s.JWTSecret != "" {
		if a.Keys, err = auth.NewKeys(s.JWTSecret); err != nil {
			return nil, err
		}
	}

	policy := services.ParseWritePolicy(s.WriteMode)
	products := repositories.NewProductRepository(a.Store)
	orders := repositories.NewOrderRepository(a.Store)
	customers := repositories.NewCustomerRepository(a.Store)

	a.Ledger = services.NewLedger(orders, products, a.Queue, a.Audit, policy)
	a.Catalog = services.NewCatalog(products, a.Queue, a.Audit, policy)
	a.Customers = services.NewCustomers(customers, a.Audit, policy, services.AdminCredentials{
		Email:    s.AdminEmail,
		Password: s.AdminPassword,
	})
	a.Dashboards = services.NewDashboards(orders, products, customers, a.Queue, statsCache, s.CacheTTL)
	a.Reconciler = services.NewReconciler(orders, products, a.Audit, policy)

	logger.Info("kernel booted",
		"record_store", s.RecordStore,
		"storage_disk", s.StorageDisk,
		"queue_driver", s.QueueDriver,
		"write_mode", policy.String())
	return a, nil
}

func (a *App) setupLogging(ctx context.Context) {
	s := a.Settings
	if s.LogMongoURI == "" {
		logger.Setup(s.AppEnv, nil)
		return
	}
	mh, err := logger.NewMongoHandler(ctx, s.LogMongoURI, s.LogMongoDB, "logs", slog.LevelInfo)
	if err != nil {
		logger.Setup(s.AppEnv, nil)
		logger.Warn("mongo log sink disabled", "error", err)
		return
	}
	logger.Setup(s.AppEnv, nil, mh)
	a.closers = append(a.closers, func() error { mh.Close(); return nil })
}

func (a *App) openStore(ctx context.Context) (record.Store, error) {
	s := a.Settings
	switch s.RecordStore {
	case "gorm":
		db, err := database.Open(ctx, s.DBDriver, s.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, func() error { return database.Close(db) })
		return record.NewGorm(ctx, db)
	case "nats":
		n, err := record.DialNATS(ctx, s.NATSURL, s.NATSBucket)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { n.Close(); return nil })
		return n, nil
	case "memory":
		return record.NewMemory(), nil
	}
	return nil, fmt.Errorf("kernel: unsupported RECORD_STORE %q", s.RecordStore)
}

func (a *App) openQueue(ctx context.Context) (*queue.Queue, error) {
	var opts []queue.Option
	if a.DB != nil {
		failures, err := queue.NewGormFailures(ctx, a.DB)
		if err != nil {
			return nil, err
		}
		opts = append(opts, queue.WithFailureStore(failures))
	}

	switch a.Settings.QueueDriver {
	case "redis":
		rdb, err := cache.Connect(ctx, a.Settings.RedisAddr, a.Settings.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("kernel: queue: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		return queue.New(queue.NewRedisDriver(rdb), opts...), nil
	case "", "memory":
		return queue.New(queue.NewMemoryDriver(), opts...), nil
	}
	return nil, fmt.Errorf("kernel: unsupported QUEUE_DRIVER %q (supported: memory, redis)", a.Settings.QueueDriver)
}

// openCache uses Redis when one is reachable and falls back to process
// memory otherwise.
func (a *App) openCache(ctx context.Context) (cache.Cache, error) {
	if a.Settings.RedisAddr == "" {
		return cache.NewMemory(), nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	rdb, err := cache.Connect(pingCtx, a.Settings.RedisAddr, a.Settings.RedisPassword)
	if err != nil {
		logger.Warn("redis cache unavailable, using memory", "error", err)
		return cache.NewMemory(), nil
	}
	a.closers = append(a.closers, rdb.Close)
	return cache.NewRedis(rdb), nil
}

// Router builds the route table with the global middleware stack. It fails
// when no JWT secret is configured, since the role-guarded groups cannot
// verify tokens without one.
func (a *App) Router() (*router.Router, error) {
	if a.Keys == nil {
		return nil, errors.New("kernel: JWT_SECRET is required to serve HTTP")
	}
	schema, err := appgraphql.NewSchema(appgraphql.Deps{
		Ledger:     a.Ledger,
		Catalog:    a.Catalog,
		Dashboards: a.Dashboards,
	})
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	r := router.New()
	// Outermost first: metrics sees total latency, recovery guards the rest,
	// and the request id exists before anything logs.
	r.Use(metrics.Middleware(), middleware.Recovery, reqid.Middleware, middleware.Logger)

	routes.RegisterAPI(r, routes.Deps{
		Keys:           a.Keys,
		AccountLimiter: middleware.NewRateLimiter(accountRateLimit, time.Minute),
		Account:        controllers.NewAccountController(a.Customers),
		Customer:       controllers.NewCustomerController(a.Ledger, a.Catalog, a.Customers, a.Dashboards),
		Admin:          controllers.NewAdminController(a.Ledger, a.Catalog, a.Customers, a.Dashboards, a.Reconciler),
		Stats:          controllers.NewStatsController(a.Dashboards),
		Health:         controllers.NewHealthController(a.Store),
		GraphQL:        graphql.Handler(schema),
	})
	return r, nil
}

// Handler is Router().Handler().
func (a *App) Handler() (http.Handler, error) {
	r, err := a.Router()
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
