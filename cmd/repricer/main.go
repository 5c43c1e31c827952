package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"voyago/internal/config"
	"voyago/internal/repositories/interfaces"
	"voyago/internal/repositories/mongodb"
	"voyago/internal/services"
	"voyago/internal/utils"
	"voyago/pkg/cache"
	"voyago/pkg/database"
	"voyago/pkg/draft"
	"voyago/pkg/logger"
	"voyago/pkg/suppliers"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// The repricer re-runs the refresh and pricing pipeline for every
// itinerary whose trip has not started yet, so stored totals track
// current supplier prices instead of drifting until the next edit.
func main() {
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

	itineraryRepo := mongodb.NewItineraryRepository(db, cacheService)
	flightRepo := mongodb.NewFlightRepository(db.Database)
	taxiRepo := mongodb.NewTaxiRepository(db.Database)
	ferryRepo := mongodb.NewFerryRepository(db.Database)
	hotelRepo := mongodb.NewHotelRepository(db.Database)
	discountRepo := mongodb.NewDiscountRepository(db.Database, cacheService)
	usageRepo := mongodb.NewDiscountUsageRepository(db.Database)
	catalogRepo := mongodb.NewCatalogRepository(db.Database, cacheService)
	leadRepo := mongodb.NewLeadRepository(db.Database)

	flightSupplier := suppliers.NewFlightSupplier(cfg.Suppliers.FlightBaseURL, cfg.Suppliers.FlightAPIKey, cfg.Suppliers.CallTimeout)
	taxiLimiter := rate.NewLimiter(rate.Limit(cfg.Suppliers.TaxiRatePerSecond), cfg.Suppliers.TaxiBurst)
	taxiSupplier := suppliers.NewTaxiSupplier(cfg.Suppliers.TaxiBaseURL, cfg.Suppliers.TaxiAPIKey, cfg.Suppliers.CallTimeout, taxiLimiter)
	ferrySupplier := suppliers.NewFerrySupplier(cfg.Suppliers.FerryBaseURL, cfg.Suppliers.FerryAPIKey, cfg.Suppliers.CallTimeout)
	hotelSupplier := suppliers.NewHotelSupplier(cfg.Suppliers.HotelBaseURL, cfg.Suppliers.HotelAPIKey, cfg.Suppliers.CallTimeout)
	draftGenerator := draft.NewHTTPGenerator(cfg.Suppliers.DraftBaseURL, cfg.Suppliers.CallTimeout)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.WithField("interval", cfg.Repricer.Interval.String()).Info("Starting repricer")

	ticker := time.NewTicker(cfg.Repricer.Interval)
	defer ticker.Stop()

	repriceAll(ctx, itineraryRepo, itineraryService, cfg.Repricer.PageSize, appLogger)
	for {
		select {
		case <-ctx.Done():
			appLogger.Info("Repricer shutting down")
			return
		case <-ticker.C:
			repriceAll(ctx, itineraryRepo, itineraryService, cfg.Repricer.PageSize, appLogger)
		}
	}
}

func repriceAll(ctx context.Context, repo interfaces.ItineraryRepository, svc services.ItineraryService, pageSize int, log *logger.Logger) {
	start := time.Now()
	var repriced, failed int

	for page := 1; ; page++ {
		params := &utils.PaginationParams{
			Page:     page,
			PageSize: pageSize,
			Sort:     "start_date",
			Order:    "asc",
		}
		itineraries, _, err := repo.GetUpcoming(ctx, time.Now(), params)
		if err != nil {
			log.WithError(err).Error("Failed to page upcoming itineraries")
			return
		}
		if len(itineraries) == 0 {
			break
		}

		for _, itinerary := range itineraries {
			if ctx.Err() != nil {
				return
			}
			if err := svc.Reprice(ctx, itinerary); err != nil {
				failed++
				log.WithField("itinerary_id", itinerary.ID.Hex()).WithError(err).Error("Failed to reprice itinerary")
				continue
			}
			repriced++
		}

		if len(itineraries) < pageSize {
			break
		}
	}

	log.WithFields(map[string]interface{}{
		"repriced":    repriced,
		"failed":      failed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Repricing pass complete")
}
