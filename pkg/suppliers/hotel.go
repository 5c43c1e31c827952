package suppliers

import (
	"context"
	"time"
)

type HotelSupplier struct {
	httpClient
}

func NewHotelSupplier(baseURL, apiKey string, timeout time.Duration) *HotelSupplier {
	return &HotelSupplier{httpClient: newHTTPClient(baseURL, apiKey, timeout)}
}

func (s *HotelSupplier) SearchStay(ctx context.Context, request *StayRequest) ([]Offer, error) {
	payload := map[string]interface{}{
		"city":       request.City,
		"check_in":   request.Arrival.Format("2006-01-02"),
		"check_out":  request.Departure.Format("2006-01-02"),
		"adults":     request.Party.Adults,
		"children":   request.Party.Children,
		"child_ages": request.Party.ChildAges,
		"rooms":      request.Party.Rooms,
	}
	return s.postSearch(ctx, "/hotels/search", payload)
}
