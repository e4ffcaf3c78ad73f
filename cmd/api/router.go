package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"spendwise/internal/config"
	"spendwise/internal/handlers"
	"spendwise/internal/middleware"
)

func newRouter(
	cfg *config.Config,
	tokens *middleware.TokenManager,
	authHandler *handlers.AuthHandler,
	expenseHandler *handlers.ExpenseHandler,
	budgetHandler *handlers.BudgetHandler,
	dashboardHandler *handlers.DashboardHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(tokens.Middleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/categories", budgetHandler.ListCategories)
	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	expenses := protected.Group("/expenses")
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/years", expenseHandler.ListYears)
	expenses.POST("/import", expenseHandler.ImportCSV)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	return router
}
