package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bitechdev/DataSpec/pkg/bulkspec"
	"github.com/bitechdev/DataSpec/pkg/cache"
	"github.com/bitechdev/DataSpec/pkg/common/adapters/database"
	"github.com/bitechdev/DataSpec/pkg/config"
	"github.com/bitechdev/DataSpec/pkg/errortracking"
	"github.com/bitechdev/DataSpec/pkg/logger"
	"github.com/bitechdev/DataSpec/pkg/metrics"
	"github.com/bitechdev/DataSpec/pkg/middleware"
	"github.com/bitechdev/DataSpec/pkg/searchspec"
	"github.com/bitechdev/DataSpec/pkg/server"
)

func main() {
	// Load configuration
	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cfg, err := cfgMgr.GetConfig()
	if err != nil {
		log.Fatalf("Failed to get configuration: %v", err)
	}

	// Initialize logger with configuration
	logger.Init(cfg.Logger.Dev)
	if cfg.Logger.Path != "" {
		logger.UpdateLoggerPath(cfg.Logger.Path, cfg.Logger.Dev)
	}
	logger.Info("DataSpec test server starting")

	// Error tracking
	tracker, err := errortracking.NewProviderFromConfig(cfg.ErrorTracking)
	if err != nil {
		logger.Warn("Failed to configure error tracking, continuing without: %v", err)
	} else {
		logger.InitErrorTracking(tracker)
	}

	// Cache provider
	if err := initCache(cfg); err != nil {
		logger.Error("Failed to initialize cache: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("Failed to open database: %v", err)
		os.Exit(1)
	}

	if err := createSchema(ctx, db); err != nil {
		logger.Error("Failed to create schema: %v", err)
		os.Exit(1)
	}
	if err := seedDemoData(ctx, db); err != nil {
		logger.Error("Failed to seed demo data: %v", err)
		os.Exit(1)
	}

	if err := registerEntities(); err != nil {
		logger.Error("Failed to register entities: %v", err)
		os.Exit(1)
	}

	// Metrics
	var promProvider *metrics.PrometheusProvider
	if cfg.Metrics.Enabled {
		promProvider = metrics.NewPrometheusProvider()
		metrics.SetProvider(promProvider)
	}

	// Routes
	r := mux.NewRouter()

	searchHandler := searchspec.NewHandlerWithBun(db)
	bulkHandler := bulkspec.NewHandlerWithBun(db)

	searchspec.SetupMuxRoutes(r, searchHandler, nil)
	bulkspec.SetupMuxRoutes(r, bulkHandler, nil)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.GetProvider().Handler())
	}

	// Middleware chain: panic recovery outermost, then metrics, then the
	// request size cap.
	sizeLimiter := middleware.NewRequestSizeLimiter(0)
	var handler http.Handler = sizeLimiter.Middleware(r)
	if promProvider != nil {
		handler = promProvider.Middleware(handler)
	}
	handler = middleware.PanicRecovery(handler)

	gs := server.NewGracefulServer(server.Config{
		Addr:            cfg.Server.Addr,
		Handler:         handler,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
	})

	r.HandleFunc("/health", gs.HealthCheckHandler())
	r.HandleFunc("/ready", gs.ReadinessHandler())

	server.RegisterShutdownCallback(func(ctx context.Context) error {
		return db.Close()
	})
	server.RegisterShutdownCallback(func(ctx context.Context) error {
		return cache.Close()
	})
	server.RegisterShutdownCallback(func(ctx context.Context) error {
		return logger.CloseErrorTracking()
	})

	logger.Info("Listening on %s (driver: %s)", cfg.Server.Addr, cfg.Database.Driver)
	if err := gs.ListenAndServe(); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

// initCache configures the process-wide cache from config.
func initCache(cfg *config.Config) error {
	switch cfg.Cache.Provider {
	case "redis":
		return cache.UseRedis(&cache.RedisConfig{
			Host:     cfg.Cache.Redis.Host,
			Port:     cfg.Cache.Redis.Port,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Options: &cache.Options{
				DefaultTTL: cfg.Cache.TTL,
			},
		})
	default:
		return cache.UseMemory(&cache.Options{
			DefaultTTL: cfg.Cache.TTL,
			MaxSize:    10000,
		})
	}
}

// openDatabase opens a Bun handle for the configured driver.
func openDatabase(cfg *config.Config) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)

	switch cfg.Database.Driver {
	case "postgres":
		sqldb, err = sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres connection: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	case "sqlite", "":
		sqldb, err = sql.Open(sqliteshim.ShimName, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if cfg.Database.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.Database.Debug {
		database.NewBunAdapter(db).EnableQueryDebug()
	}

	return db, nil
}
