package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spendwise/internal/config"
	"spendwise/internal/logger"
	"spendwise/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Models lists every table managed by the application.
var Models = []interface{}{
	&models.User{},
	&models.Expense{},
	&models.AuditLog{},
}

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config *Config
}

// NewManager opens a gorm connection for the configured driver.
func NewManager(cfg *Config) (*Manager, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true, // Required for Supabase Supavisor; harmless for direct connections
		})
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// SQLite allows a single writer; serialize through one connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &Manager{db: db, config: cfg}, nil
}

// RunMigrations brings the schema up to date. Postgres uses the SQL files in
// the migrations directory; SQLite is auto-migrated from the models.
func (m *Manager) RunMigrations() error {
	log := logger.Get()
	log.Infow("Running database migrations", "driver", m.config.Driver)

	if m.config.Driver == config.DriverSQLite {
		if err := m.db.AutoMigrate(Models...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Info("Database migrations completed successfully")
		return nil
	}

	mig, err := migrate.New("file://"+m.config.MigrationsPath, m.config.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			log.Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			log.Warnf("migrate database close error: %v", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
