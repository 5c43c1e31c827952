package suppliers

import (
	"context"
	"time"
)

type FlightSupplier struct {
	httpClient
}

func NewFlightSupplier(baseURL, apiKey string, timeout time.Duration) *FlightSupplier {
	return &FlightSupplier{httpClient: newHTTPClient(baseURL, apiKey, timeout)}
}

func (s *FlightSupplier) Search(ctx context.Context, request *SearchRequest) ([]Offer, error) {
	payload := map[string]interface{}{
		"origin":         request.Origin,
		"destination":    request.Destination,
		"departure_date": request.Date.Format("2006-01-02"),
		"adults":         request.Party.Adults,
		"children":       request.Party.Children,
		"child_ages":     request.Party.ChildAges,
	}
	return s.postSearch(ctx, "/flights/search", payload)
}
