package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/Md-FarhadHossain/profit-first-server/internal/handler"
	"github.com/Md-FarhadHossain/profit-first-server/internal/infrastructure"
	"github.com/Md-FarhadHossain/profit-first-server/internal/middleware"
	"github.com/Md-FarhadHossain/profit-first-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional outside development
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := infrastructure.LoadAppConfig()

	// Initialize database connection
	db, err := infrastructure.ConnectDatabase(infrastructure.DefaultDatabaseConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Perform all database migrations
	if err := infrastructure.MigrateAllSchemas(db); err != nil {
		log.Fatalf("Failed to migrate database schemas: %v", err)
	}

	// Seed first-startup defaults and repair legacy rows
	if err := infrastructure.NewDefaultsManager(db).EnsureAll(); err != nil {
		log.Fatalf("Failed to ensure startup defaults: %v", err)
	}

	// Initialize services
	stockService := service.NewStockService(db)
	cartService := service.NewCartService(db)
	blocklistService := service.NewBlocklistService(db)
	expenseService := service.NewExpenseService(db)
	classifier := service.NewHTTPAddressClassifier(cfg.ClassifierURL, cfg.ClassifierAPIKey, logger)
	orderService := service.NewOrderService(db, cartService, blocklistService, classifier,
		service.OrderServiceConfig{
			PermissiveStatusFlow: cfg.PermissiveStatusFlow,
			AllowUnlinkedRestock: cfg.AllowUnlinkedRestock,
		}, logger)
	courierClient := service.NewSteadfastClient(cfg.CourierBaseURL, cfg.CourierAPIKey, cfg.CourierSecretKey)
	courierService := service.NewCourierService(db, orderService, courierClient, logger)

	// Initialize handlers
	orderHandler := handler.NewOrderHandler(orderService)
	cartHandler := handler.NewCartHandler(cartService)
	blocklistHandler := handler.NewBlocklistHandler(blocklistService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	courierHandler := handler.NewCourierHandler(courierService)
	stockHandler := handler.NewStockHandler(stockService)

	// Setup Gin router
	r := gin.Default()

	// CORS (the dashboard and storefront run on other origins)
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Device-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
	r.Use(middleware.ClientMetadata())

	// Orders
	r.POST("/orders", orderHandler.CreateOrder)
	r.GET("/orders", orderHandler.ListOrders)
	r.PATCH("/orders/:id", orderHandler.UpdateStatus)
	r.PATCH("/orders/:id/call-status", orderHandler.UpdateCallStatus)
	r.PATCH("/orders/:id/shipping-method", orderHandler.UpdateShippingMethod)
	r.PATCH("/orders/:id/price", orderHandler.UpdatePrice)
	r.PATCH("/orders/:id/note", orderHandler.UpdateNote)
	r.PATCH("/orders/:id/restock-return", orderHandler.RestockReturn)
	r.POST("/orders/:id/move-to-abandoned", orderHandler.MoveToAbandoned)
	r.POST("/orders/:id/analyze-location", orderHandler.AnalyzeLocation)
	r.POST("/manual-orders", orderHandler.CreateManualOrder)

	// Abandoned-cart drafts
	r.POST("/partial-orders", cartHandler.SavePartial)
	r.GET("/partial-orders", cartHandler.ListPartials)
	r.DELETE("/partial-orders/:id", cartHandler.DeletePartial)

	// Fraud blocklist
	admin := r.Group("/admin")
	admin.POST("/blocked-users", blocklistHandler.Block)
	admin.GET("/blocked-users", blocklistHandler.List)
	admin.DELETE("/blocked-users/:identifier", blocklistHandler.Unblock)
	r.GET("/check-ban-status", blocklistHandler.CheckBanStatus)

	// Finance
	r.GET("/finance-summary", expenseHandler.FinanceSummary)
	r.GET("/expenses", expenseHandler.List)
	r.POST("/expenses", expenseHandler.Add)
	r.DELETE("/expenses/:id", expenseHandler.Delete)

	// Stock
	r.GET("/stock", stockHandler.Current)

	// Courier gateway bridge
	courier := r.Group("/courier")
	courier.POST("/create-order", courierHandler.CreateOrder)
	courier.GET("/check-status/:id", courierHandler.CheckStatus)
	courier.POST("/webhook", courierHandler.Webhook)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	logger.Info("starting order management server", "port", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
