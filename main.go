package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/comandapp/comandas-api/config"
	"github.com/comandapp/comandas-api/controllers"
	"github.com/comandapp/comandas-api/events"
	"github.com/comandapp/comandas-api/middleware"
	"github.com/comandapp/comandas-api/models"
	"github.com/comandapp/comandas-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Comandas API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Restaurant{},
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Start the websocket gateway and install it as the notification
	// dispatcher for order events
	gateway := events.NewGateway()
	gateway.Run()
	services.SetDispatcher(gateway)

	// Initialize Gin router
	router := gin.Default()

	// CORS for browser clients (kitchen/waiter dashboards)
	corsConfig := cors.DefaultConfig()
	if cfg.CORSAllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.CORSAllowOrigins}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Authentication
		v1.POST("/auth/register", controllers.RegisterRestaurant)
		v1.POST("/auth/login", controllers.Login)

		authed := v1.Group("")
		authed.Use(middleware.EnsureValidToken(cfg))
		{
			// Staff management (administrators only)
			authed.POST("/users",
				middleware.RequireRoles(models.RoleAdministrator),
				controllers.CreateUser,
			)

			// Product catalog
			authed.GET("/products", controllers.ListProducts)
			authed.GET("/products/:id", controllers.GetProduct)
			authed.POST("/products",
				middleware.RequireRoles(models.RoleAdministrator),
				controllers.CreateProduct,
			)
			authed.PATCH("/products/:id",
				middleware.RequireRoles(models.RoleAdministrator),
				controllers.UpdateProduct,
			)
			authed.DELETE("/products/:id",
				middleware.RequireRoles(models.RoleAdministrator),
				controllers.DeleteProduct,
			)

			// Orders
			authed.GET("/orders", controllers.ListOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.POST("/orders",
				middleware.RequireRoles(models.RoleWaiter, models.RoleAdministrator),
				controllers.CreateOrder,
			)
			// Role gating per transition edge happens in the service via
			// the transition table, so the route only requires a valid token.
			authed.PATCH("/orders/:id/status", controllers.TransitionOrder)
			authed.DELETE("/orders/:id",
				middleware.RequireRoles(models.RoleAdministrator),
				controllers.CancelOrder,
			)
			authed.DELETE("/orders/:id/permanent",
				middleware.RequireRoles(models.RoleAdministrator),
				controllers.DeleteOrder,
			)

			// Line items
			authed.POST("/orders/:id/items",
				middleware.RequireRoles(models.RoleWaiter, models.RoleAdministrator),
				controllers.AddItems,
			)
			authed.PATCH("/orders/:id/items/:itemId",
				middleware.RequireRoles(models.RoleWaiter, models.RoleAdministrator),
				controllers.UpdateItem,
			)
			authed.DELETE("/orders/:id/items/:itemId",
				middleware.RequireRoles(models.RoleWaiter, models.RoleAdministrator),
				controllers.RemoveItem,
			)
		}
	}

	// Websocket notification channels
	router.GET("/ws/:channel", middleware.EnsureValidToken(cfg), gateway.Handle)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comandas API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
