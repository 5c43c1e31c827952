package suppliers

import (
	"context"
	"time"
)

type FerrySupplier struct {
	httpClient
}

func NewFerrySupplier(baseURL, apiKey string, timeout time.Duration) *FerrySupplier {
	return &FerrySupplier{httpClient: newHTTPClient(baseURL, apiKey, timeout)}
}

func (s *FerrySupplier) Search(ctx context.Context, request *SearchRequest) ([]Offer, error) {
	payload := map[string]interface{}{
		"from_port":   request.Origin,
		"to_port":     request.Destination,
		"travel_date": request.Date.Format("2006-01-02"),
		"adults":      request.Party.Adults,
		"children":    request.Party.Children,
	}
	return s.postSearch(ctx, "/ferries/search", payload)
}
