// Package database opens the configured storage backend.
package database

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"dairy-billing-backend/internal/config"
	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"
	"dairy-billing-backend/internal/repository/memory"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const retryDelay = 2 * time.Second

// OpenStore returns the repository set for cfg.DataBackend.
func OpenStore(cfg *config.Config, log *slog.Logger) (*repository.Store, error) {
	if cfg.DataBackend == config.BackendMemory {
		logging.WithComponent(log, logging.ComponentStorage).Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}

	db, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

// Open connects to postgres or sqlite, retrying while the server comes up,
// then brings the schema up to date.
func Open(cfg *config.Config, base *slog.Logger) (*gorm.DB, error) {
	log := logging.WithComponent(base, logging.ComponentStorage)
	level := logger.Silent
	if cfg.DBDebug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var dialector gorm.Dialector
	switch cfg.DataBackend {
	case config.BackendPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported data backend %q", cfg.DataBackend)
	}

	var (
		db  *gorm.DB
		err error
	)
	retries := max(cfg.DBConnectRetries, 1)
	for attempt := 1; attempt <= retries; attempt++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = db.Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database not ready", "attempt", attempt, "max_attempts", retries, logging.FieldError, err)
		if attempt < retries {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", retries, err)
	}

	log.Info("database connected", "backend", cfg.DataBackend, "dsn", redact(cfg))

	if cfg.RunMigrations && cfg.DataBackend == config.BackendPostgres {
		mlog := logging.WithComponent(base, logging.ComponentMigration)
		if err := RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("sql migrations: %w", err)
		}
		mlog.Info("sql migrations applied")
		return db, nil
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

// redact hides the password in a postgres URL for logging.
func redact(cfg *config.Config) string {
	if cfg.DataBackend != config.BackendPostgres {
		return cfg.SQLitePath
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil || u.User == nil {
		return "postgres"
	}
	return u.Redacted()
}
