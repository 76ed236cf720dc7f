// Package router assembles the HTTP routes of the budget API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgetbot/internal/config"
	_ "budgetbot/internal/docs" // swagger spec
	"budgetbot/internal/handlers"
	"budgetbot/internal/middleware"
	"budgetbot/internal/services"
)

// Services bundles the service layer the handlers depend on.
type Services struct {
	Category    services.CategoryServicer
	Cycle       services.CycleServicer
	Transaction services.TransactionServicer
	Budget      services.BudgetServicer
	Cashflow    services.CashflowServicer
	Alert       services.AlertServicer
	Audit       services.AuditServicer
}

// New builds the gin engine with middleware, health check, swagger UI and
// the /api/v1 routes.
func New(cfg *config.Config, svc Services) *gin.Engine {
	categoryHandler := handlers.NewCategoryHandler(svc.Category, svc.Audit)
	cycleHandler := handlers.NewCycleHandler(svc.Cycle, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budget, svc.Cashflow)
	alertHandler := handlers.NewAlertHandler(svc.Alert)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler())
	router.NoRoute(middleware.NotFound())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	cycles := v1.Group("/cycles")
	cycles.POST("", cycleHandler.CreateCycle)
	cycles.GET("", cycleHandler.GetCycles)
	cycles.GET("/:id", cycleHandler.GetCycleByID)
	cycles.DELETE("/:id", cycleHandler.DeleteCycle)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budget := v1.Group("/budget")
	budget.GET("", budgetHandler.GetCurrentBudget)
	budget.GET("/cycles/:id", budgetHandler.GetCycleBudget)

	v1.GET("/cashflow", budgetHandler.GetCashflow)
	v1.GET("/alerts", alertHandler.GetAlerts)

	return router
}
