package config

// PricingConfig carries the markup schedule applied on top of supplier
// prices. Markups are percentages; TaxRate is a fraction (0.18 = 18%).
type PricingConfig struct {
	FlightMarkupPercent float64 `yaml:"flight_markup_percent"`
	TaxiMarkupPercent   float64 `yaml:"taxi_markup_percent"`
	FerryMarkupPercent  float64 `yaml:"ferry_markup_percent"`
	StayMarkupPercent   float64 `yaml:"stay_markup_percent"`
	ServiceFee          float64 `yaml:"service_fee"`
	TaxRate             float64 `yaml:"tax_rate"`
}

func loadPricingConfig() *PricingConfig {
	return &PricingConfig{
		FlightMarkupPercent: getEnvAsFloat64("MARKUP_FLIGHT_PERCENT", 8),
		TaxiMarkupPercent:   getEnvAsFloat64("MARKUP_TAXI_PERCENT", 12),
		FerryMarkupPercent:  getEnvAsFloat64("MARKUP_FERRY_PERCENT", 10),
		StayMarkupPercent:   getEnvAsFloat64("MARKUP_STAY_PERCENT", 15),
		ServiceFee:          getEnvAsFloat64("SERVICE_FEE", 50),
		TaxRate:             getEnvAsFloat64("TAX_RATE", 0.18),
	}
}
