package suppliers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// TaxiSupplier owns its own token-bucket limiter; the upstream taxi API
// throttles aggressively and the limiter keeps us inside its quota
// without any process-wide state.
type TaxiSupplier struct {
	httpClient
	limiter *rate.Limiter
}

func NewTaxiSupplier(baseURL, apiKey string, timeout time.Duration, limiter *rate.Limiter) *TaxiSupplier {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 5)
	}
	return &TaxiSupplier{
		httpClient: newHTTPClient(baseURL, apiKey, timeout),
		limiter:    limiter,
	}
}

func (s *TaxiSupplier) Search(ctx context.Context, request *SearchRequest) ([]Offer, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("taxi search rate limit wait: %w", err)
	}

	payload := map[string]interface{}{
		"pickup_city":  request.Origin,
		"dropoff_city": request.Destination,
		"travel_date":  request.Date.Format("2006-01-02"),
		"passengers":   request.Party.Adults + request.Party.Children,
	}
	return s.postSearch(ctx, "/taxis/search", payload)
}
