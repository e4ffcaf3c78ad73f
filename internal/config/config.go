package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Budgets: a JSON object of category to monthly ceiling, or a file holding one.
	CategoriesBudgets     string
	CategoriesBudgetsFile string

	// Import
	MaxImportBytes int64
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		// Database
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "spendwise"),
		DBPassword: getEnv("DB_PASSWORD", "spendwise"),
		DBName:     getEnv("DB_NAME", "spendwise"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/spendwise.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		CategoriesBudgets:     getEnv("CATEGORIES_BUDGETS", ""),
		CategoriesBudgetsFile: getEnv("CATEGORIES_BUDGETS_FILE", ""),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	maxStr := getEnv("MAX_IMPORT_BYTES", "5242880")
	maxBytes, err := strconv.ParseInt(maxStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_IMPORT_BYTES value '%s': %w", maxStr, err)
	}
	config.MaxImportBytes = maxBytes

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number between 1 and 65535", c.Port))
	}

	switch c.DBDriver {
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH cannot be empty for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be one of [%s %s]", c.DBDriver, DriverPostgres, DriverSQLite))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET cannot be empty")
	}

	if strings.TrimSpace(c.CategoriesBudgets) == "" && c.CategoriesBudgetsFile == "" {
		problems = append(problems, "one of CATEGORIES_BUDGETS or CATEGORIES_BUDGETS_FILE must be set")
	}

	if c.MaxImportBytes <= 0 {
		problems = append(problems, "MAX_IMPORT_BYTES must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
