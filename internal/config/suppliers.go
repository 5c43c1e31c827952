package config

import (
	"time"
)

type SuppliersConfig struct {
	FlightBaseURL string        `yaml:"flight_base_url"`
	FlightAPIKey  string        `yaml:"flight_api_key"`
	TaxiBaseURL   string        `yaml:"taxi_base_url"`
	TaxiAPIKey    string        `yaml:"taxi_api_key"`
	FerryBaseURL  string        `yaml:"ferry_base_url"`
	FerryAPIKey   string        `yaml:"ferry_api_key"`
	HotelBaseURL  string        `yaml:"hotel_base_url"`
	HotelAPIKey   string        `yaml:"hotel_api_key"`
	DraftBaseURL  string        `yaml:"draft_base_url"`
	CallTimeout   time.Duration `yaml:"call_timeout"`

	// Token bucket for the taxi supplier, which throttles hard upstream.
	TaxiRatePerSecond float64 `yaml:"taxi_rate_per_second"`
	TaxiBurst         int     `yaml:"taxi_burst"`
}

func loadSuppliersConfig() *SuppliersConfig {
	return &SuppliersConfig{
		FlightBaseURL:     getEnv("SUPPLIER_FLIGHT_BASE_URL", "http://localhost:9001"),
		FlightAPIKey:      getEnv("SUPPLIER_FLIGHT_API_KEY", ""),
		TaxiBaseURL:       getEnv("SUPPLIER_TAXI_BASE_URL", "http://localhost:9002"),
		TaxiAPIKey:        getEnv("SUPPLIER_TAXI_API_KEY", ""),
		FerryBaseURL:      getEnv("SUPPLIER_FERRY_BASE_URL", "http://localhost:9003"),
		FerryAPIKey:       getEnv("SUPPLIER_FERRY_API_KEY", ""),
		HotelBaseURL:      getEnv("SUPPLIER_HOTEL_BASE_URL", "http://localhost:9004"),
		HotelAPIKey:       getEnv("SUPPLIER_HOTEL_API_KEY", ""),
		DraftBaseURL:      getEnv("DRAFT_GENERATOR_BASE_URL", "http://localhost:9005"),
		CallTimeout:       getEnvAsDuration("SUPPLIER_CALL_TIMEOUT", 15*time.Second),
		TaxiRatePerSecond: getEnvAsFloat64("SUPPLIER_TAXI_RATE_PER_SECOND", 2),
		TaxiBurst:         getEnvAsInt("SUPPLIER_TAXI_BURST", 5),
	}
}
