package utils

import "time"

// Application Constants
const (
	AppName    = "Voyago"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "USD"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour

	// Itinerary Constants
	MaxCitiesPerItinerary = 12
	MaxDaysPerLeg         = 30
	MaxTripDays           = 90
	MinTripDays           = 1

	// Supplier Constants
	SupplierCallTimeout  = 15 * time.Second
	SupplierRetryBackoff = 2 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFailed  = "failed"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrTokenExpired     = "token expired"
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrNotFound         = "not found"
	ErrConflict         = "conflict"
	ErrValidationFailed = "validation failed"
)

// Cache Keys
const (
	CacheItineraryPrefix   = "itinerary:"
	CacheDestinationPrefix = "destination:"
	CacheCityPrefix        = "city:"
	CacheDiscountPrefix    = "discount_code:"
	CacheRateLimitPrefix   = "rate_limit:"
)
