package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"finhelp/internal/config"
	"finhelp/internal/database"
	"finhelp/internal/handlers"
	"finhelp/internal/identity"
	"finhelp/internal/identity/gormprovider"
	"finhelp/internal/logger"
	"finhelp/internal/middleware"
	"finhelp/internal/prefs"
	"finhelp/internal/store"
	"finhelp/internal/store/gormsource"
	"finhelp/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Custom binding validators
	validator.Register()

	// Wire the identity session, live transaction store, and preferences
	db := dbManager.DB()
	provider := gormprovider.New(db, appConfig.ProviderSecret)
	sessions := identity.NewManager(provider)
	source := gormsource.New(db)
	txStore := store.New(source)
	stopFollowing := txStore.Follow(sessions)
	defer stopFollowing()
	prefStore := prefs.NewStore(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessions)
	transactionHandler := handlers.NewTransactionHandler(txStore, sessions)
	dashboardHandler := handlers.NewDashboardHandler(txStore, sessions)
	preferenceHandler := handlers.NewPreferenceHandler(prefStore)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/provider", authHandler.Provider)

	// Theme preference is independent of identity
	preferences := v1.Group("/preferences")
	preferences.GET("/theme", preferenceHandler.GetTheme)
	preferences.PUT("/theme", preferenceHandler.SetTheme)
	preferences.POST("/theme/toggle", preferenceHandler.ToggleTheme)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", dashboardHandler.Get)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.List)
	transactions.POST("", transactionHandler.Create)
	transactions.PATCH("/:id", transactionHandler.Update)
	transactions.DELETE("/:id", transactionHandler.Delete)

	log.Infof("Starting FinHelp backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
