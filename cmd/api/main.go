package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/dig"
	"gorm.io/gorm"

	"spendwise/internal/budget"
	"spendwise/internal/config"
	"spendwise/internal/database"
	"spendwise/internal/handlers"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/repository"
	"spendwise/internal/services"
	"spendwise/internal/validator"

	_ "spendwise/internal/docs" // Import swagger docs
)

// @title           Spendwise API
// @version         1.0
// @description     Spendwise records personal expenses, summarizes monthly spending per category, warns about overspent budgets and imports expenses in bulk from CSV.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	container, err := buildContainer()
	if err != nil {
		return err
	}

	return container.Invoke(func(cfg *config.Config, router *gin.Engine, dbManager *database.Manager) error {
		defer func() {
			if err := dbManager.Close(); err != nil {
				logger.Get().Warnw("Failed to close database", "error", err)
			}
		}()

		log := logger.Get()
		log.Infof("Starting Spendwise server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		return router.Run(":" + cfg.Port)
	})
}

// buildContainer registers every constructor of the object graph.
func buildContainer() (*dig.Container, error) {
	c := dig.New()

	providers := []interface{}{
		loadConfig,
		loadBudgets,
		database.NewConfig,
		openDatabase,
		func(m *database.Manager) *gorm.DB { return m.DB() },

		repository.NewExpenseRepository,
		func(repo repository.ExpenseRepository) repository.AggregationReader { return repo },

		services.NewUserService,
		services.NewExpenseService,
		services.NewImportService,
		services.NewSummaryService,
		services.NewAlertService,
		services.NewAuditService,

		func(cfg *config.Config) *middleware.TokenManager {
			return middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTExpirationDur)
		},
		func(m *middleware.TokenManager) handlers.TokenIssuer { return m },

		handlers.NewAuthHandler,
		func(
			cfg *config.Config,
			expenses services.ExpenseServicer,
			imports services.ImportServicer,
			audit services.AuditServicer,
		) *handlers.ExpenseHandler {
			return handlers.NewExpenseHandler(expenses, imports, audit, cfg.MaxImportBytes)
		},
		handlers.NewBudgetHandler,
		handlers.NewDashboardHandler,

		newRouter,
	}
	for _, provider := range providers {
		if err := c.Provide(provider); err != nil {
			return nil, fmt.Errorf("failed to register provider: %w", err)
		}
	}
	return c, nil
}

// loadConfig reads the configuration and initializes the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	validator.Register()
	return cfg, nil
}

func loadBudgets(cfg *config.Config) (*budget.Table, error) {
	table, err := budget.Load(cfg.CategoriesBudgets, cfg.CategoriesBudgetsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load category budgets: %w", err)
	}
	logger.Get().Infow("Category budgets loaded", "categories", table.Categories())
	return table, nil
}

func openDatabase(dbConfig *database.Config) (*database.Manager, error) {
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return dbManager, nil
}
