package main

import (
	"fmt"
	"log"
	"net/http"

	"voyago/internal/config"
	"voyago/internal/handlers"
	"voyago/internal/middleware"
	"voyago/internal/repositories/mongodb"
	"voyago/internal/services"
	"voyago/internal/utils"
	"voyago/pkg/cache"
	"voyago/pkg/database"
	"voyago/pkg/draft"
	"voyago/pkg/logger"
	"voyago/pkg/suppliers"
	"voyago/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		appLogger.WithError(err).Fatal("Failed to run database migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache)

	// Repositories
	itineraryRepo := mongodb.NewItineraryRepository(db, cacheService)
	flightRepo := mongodb.NewFlightRepository(db.Database)
	taxiRepo := mongodb.NewTaxiRepository(db.Database)
	ferryRepo := mongodb.NewFerryRepository(db.Database)
	hotelRepo := mongodb.NewHotelRepository(db.Database)
	discountRepo := mongodb.NewDiscountRepository(db.Database, cacheService)
	usageRepo := mongodb.NewDiscountUsageRepository(db.Database)
	catalogRepo := mongodb.NewCatalogRepository(db.Database, cacheService)
	leadRepo := mongodb.NewLeadRepository(db.Database)

	// Supplier adapters
	flightSupplier := suppliers.NewFlightSupplier(cfg.Suppliers.FlightBaseURL, cfg.Suppliers.FlightAPIKey, cfg.Suppliers.CallTimeout)
	taxiLimiter := rate.NewLimiter(rate.Limit(cfg.Suppliers.TaxiRatePerSecond), cfg.Suppliers.TaxiBurst)
	taxiSupplier := suppliers.NewTaxiSupplier(cfg.Suppliers.TaxiBaseURL, cfg.Suppliers.TaxiAPIKey, cfg.Suppliers.CallTimeout, taxiLimiter)
	ferrySupplier := suppliers.NewFerrySupplier(cfg.Suppliers.FerryBaseURL, cfg.Suppliers.FerryAPIKey, cfg.Suppliers.CallTimeout)
	hotelSupplier := suppliers.NewHotelSupplier(cfg.Suppliers.HotelBaseURL, cfg.Suppliers.HotelAPIKey, cfg.Suppliers.CallTimeout)
	draftGenerator := draft.NewHTTPGenerator(cfg.Suppliers.DraftBaseURL, cfg.Suppliers.CallTimeout)

	// Services
	mutationService := services.NewMutationService(catalogRepo, draftGenerator, appLogger)
	refreshService := services.NewRefreshService(
		flightSupplier, taxiSupplier, ferrySupplier, hotelSupplier,
		flightRepo, taxiRepo, ferryRepo, hotelRepo, catalogRepo,
		cfg.Suppliers.CallTimeout, appLogger,
	)
	discountService := services.NewDiscountService(discountRepo, usageRepo, itineraryRepo, appLogger)
	pricingService := services.NewPricingService(
		flightRepo, taxiRepo, ferryRepo, hotelRepo, catalogRepo,
		discountService, cfg.Pricing, appLogger,
	)
	itineraryService := services.NewItineraryService(
		itineraryRepo, flightRepo, taxiRepo, ferryRepo, hotelRepo,
		catalogRepo, leadRepo,
		mutationService, refreshService, pricingService, discountService,
		appLogger,
	)

	itineraryHandler := handlers.NewItineraryHandler(itineraryService)
	discountHandler := handlers.NewDiscountHandler(discountService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	apiLimiter := rate.NewLimiter(rate.Limit(utils.DefaultRateLimit), utils.DefaultRateLimit)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(apiLimiter))
	{
		routes.SetupItineraryRoutes(v1, itineraryHandler, cfg.Security.JWTSecret)
		routes.SetupDiscountRoutes(v1, discountHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	appLogger.WithField("addr", addr).Info("Starting itinerary server")
	if err := router.Run(addr); err != nil {
		appLogger.WithError(err).Fatal("Server stopped")
	}
}
