package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"spendwise/internal/config"
	"spendwise/internal/database"
	"spendwise/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: migrate <up|down|version|force> [N]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if cfg.DBDriver != config.DriverPostgres {
		return fmt.Errorf("SQL migrations target postgres; the %s driver is migrated at server startup", cfg.DBDriver)
	}

	dbConfig := database.NewConfig(cfg)
	m, err := migrate.New("file://"+dbConfig.MigrationsPath, dbConfig.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			log.Warnf("migrate database close error: %v", dbErr)
		}
	}()

	command := os.Args[1]

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Info("Migrations applied successfully")

	case "down":
		steps, err := stepsArg(1)
		if err != nil {
			return err
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Infof("Rolled back %d migration(s)", steps)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Info("No migrations applied yet")
				return nil
			}
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Infof("Version: %d, Dirty: %v", version, dirty)

	case "force":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			return fmt.Errorf("invalid version: %w", err)
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force failed: %w", err)
		}
		log.Infof("Forced version %d", version)

	default:
		return fmt.Errorf("unknown command: %s (use up, down, version or force)", command)
	}

	return nil
}

// stepsArg reads the optional step count, falling back to def.
func stepsArg(def int) (int, error) {
	if len(os.Args) < 3 {
		return def, nil
	}
	steps, err := strconv.Atoi(os.Args[2])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("invalid step count %q", os.Args[2])
	}
	return steps, nil
}
