package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"stockagent/internal/config"
	"stockagent/internal/database"
	"stockagent/internal/handlers"
	"stockagent/internal/logger"
	"stockagent/internal/marketdata"
	"stockagent/internal/middleware"
	"stockagent/internal/services"
	"stockagent/internal/validator"
)

// @title           Stockagent API
// @version         1.0
// @description     Stockagent is a personal stock tracking application: a trade ledger, a watchlist, and a rate-limited market data gateway behind a portfolio dashboard.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Market data gateway
	polygonClient := marketdata.NewClient(
		&http.Client{Timeout: 15 * time.Second},
		appConfig.PolygonBaseURL,
		appConfig.PolygonAPIKey,
	)
	gateway := marketdata.NewGateway(polygonClient, log, marketdata.Options{
		Quota:         appConfig.RateLimitQuota,
		Window:        appConfig.RateLimitWindow,
		AggregatesTTL: appConfig.AggregatesTTL,
		SearchTTL:     appConfig.SearchTTL,
		TickerInfoTTL: appConfig.TickerInfoTTL,
	})

	// Expired cache entries are reclaimed periodically; lookups already
	// treat stale entries as misses, so the sweep is purely memory hygiene.
	sweepTicker := time.NewTicker(appConfig.AggregatesTTL)
	defer sweepTicker.Stop()
	go func() {
		for range sweepTicker.C {
			gateway.Sweep()
		}
	}()

	// Services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	tradeService := services.NewTradeService(db)
	favoriteService := services.NewFavoriteService(db)
	stockService := services.NewStockService(tradeService, favoriteService, gateway, log)
	notificationService, err := services.NewNotificationService(context.Background(), appConfig.FirebaseCredsPath, log)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}

	// Market monitor: alert subscribers about significant daily moves
	monitor := services.NewMonitorService(db, stockService, notificationService, log, appConfig.MovementThreshold)
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	defer cancelMonitor()
	go monitor.Run(monitorCtx, appConfig.MarketCheckInterval)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService, notificationService)
	stockHandler := handlers.NewStockHandler(stockService)
	portfolioHandler := handlers.NewPortfolioHandler(stockService)

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
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

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Trade ledger routes
	trades := protected.Group("/trades")
	trades.POST("", tradeHandler.CreateTrade)
	trades.GET("", tradeHandler.GetTrades)
	trades.GET("/:id", tradeHandler.GetTrade)
	trades.DELETE("/:id", tradeHandler.DeleteTrade)

	// Watchlist routes
	favorites := protected.Group("/favorites")
	favorites.POST("", favoriteHandler.AddFavorite)
	favorites.GET("", favoriteHandler.GetFavorites)
	favorites.DELETE("/:ticker", favoriteHandler.RemoveFavorite)

	// Device token routes
	devices := protected.Group("/devices")
	devices.POST("", favoriteHandler.RegisterDevice)
	devices.DELETE("", favoriteHandler.UnregisterDevice)

	// Market data routes
	stocks := protected.Group("/stocks")
	stocks.GET("/search", stockHandler.Search)
	stocks.GET("/quotes", stockHandler.GetQuotes)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.GET("/indexes", stockHandler.GetMajorIndexes)
	dashboard.GET("/favorites", stockHandler.GetDashboardFavorites)

	// Portfolio routes
	portfolio := protected.Group("/portfolio")
	portfolio.GET("/positions", portfolioHandler.GetPositions)
	portfolio.GET("/summary", portfolioHandler.GetSummary)

	log.Infof("Starting stockagent server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
