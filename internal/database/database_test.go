package database

import (
	"path/filepath"
	"testing"

	"spendwise/internal/config"
)

func TestConfigDSN(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBDriver:   config.DriverPostgres,
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "spendwise",
		DBSSLMode:  "disable",
	})

	if got := cfg.DSN(); got != "host=db port=5432 user=u password=p dbname=spendwise sslmode=disable" {
		t.Errorf("unexpected postgres DSN %q", got)
	}
	if got := cfg.MigrateURL(); got != "postgres://u:p@db:5432/spendwise?sslmode=disable" {
		t.Errorf("unexpected migrate URL %q", got)
	}
}

func TestSQLiteManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spendwise.db")
	mgr, err := NewManager(&Config{Driver: config.DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer mgr.Close()

	if err := mgr.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	for _, table := range []string{"users", "expenses", "audit_logs"} {
		if !mgr.DB().Migrator().HasTable(table) {
			t.Errorf("table %q should exist after migration", table)
		}
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewManager(&Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
