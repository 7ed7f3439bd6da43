// Package sqldb contains the concrete implementation of the persistence
// layer using GORM, backed by either an embedded SQLite file or a
// PostgreSQL server depending on configuration.
package sqldb

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"sharp/config"
	"sharp/internal/domain/lifecycle"
	"sharp/internal/errors"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the database handle shared by all request-handling
// goroutines. The pool is the only shared mutable resource in the gateway;
// it is constructed here once and passed down, never reached through a
// singleton.
func New(params Params) (*gorm.DB, error) {
	db, err := open(params.Config)
	if err != nil {
		return nil, err
	}
	db = db.Session(&gorm.Session{
		// Disable GORM's per-statement implicit transaction.
		// We keep explicit transactions via txManager.Execute for multi-step atomic operations.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	if replicas := replicaDialectors(params.Config); len(replicas) > 0 {
		if err := db.Use(dbresolver.Register(dbresolver.Config{Replicas: replicas})); err != nil {
			return nil, errors.Wrap(err, "failed to register read replicas")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	applyPoolSettings(sqlDB, params.Config)

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	// Add lifecycle management
	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping database")
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

func open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		// Map backend-specific constraint failures onto GORM's portable
		// error values (gorm.ErrDuplicatedKey and friends).
		TranslateError: true,
	}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), gormCfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite database")
		}

		return db, nil
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open postgres database")
		}

		return db, nil
	default:
		return nil, errors.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

func replicaDialectors(cfg *config.Config) []gorm.Dialector {
	if cfg.Database.Driver != config.DriverPostgres {
		return nil
	}

	replicas := make([]gorm.Dialector, 0, len(cfg.Database.Replicas))
	for _, dsn := range cfg.Database.Replicas {
		replicas = append(replicas, postgres.Open(dsn))
	}

	return replicas
}

func applyPoolSettings(sqlDB *sql.DB, cfg *config.Config) {
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waitDelta := cur.WaitCount - prev.WaitCount
			waitDurationDelta := cur.WaitDuration - prev.WaitDuration

			if waitDelta > 0 {
				attrs := []slog.Attr{
					slog.Int64("waitCountDelta", waitDelta),
					slog.Duration("waitDurationDelta", waitDurationDelta),
					slog.Duration("avgWait", waitDurationDelta/time.Duration(waitDelta)),
					slog.Int("maxOpenConns", cur.MaxOpenConnections),
					slog.Int("openConns", cur.OpenConnections),
					slog.Int("inUseConns", cur.InUse),
					slog.Int("idleConns", cur.Idle),
				}
				if waitDurationDelta >= dbPoolWarnDurationThreshold {
					logger.LogAttrs(ctx, slog.LevelWarn, "Database pool wait detected", attrs...)
				} else {
					logger.LogAttrs(ctx, slog.LevelDebug, "Database pool wait observed", attrs...)
				}
			}

			prev = cur
		}
	}
}
