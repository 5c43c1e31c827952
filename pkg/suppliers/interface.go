package suppliers

import (
	"context"
	"time"
)

// Party is the traveller composition sent with every supplier search.
type Party struct {
	Adults    int   `json:"adults"`
	Children  int   `json:"children"`
	ChildAges []int `json:"child_ages,omitempty"`
	Rooms     int   `json:"rooms"`
}

// Offer is one priced result from a supplier. Suppliers return an empty
// list on "no offers"; an error means transport-level failure only.
type Offer struct {
	Price    float64           `json:"price"`
	Currency string            `json:"currency"`
	Vendor   string            `json:"vendor"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type SearchRequest struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        time.Time `json:"date"`
	Party       Party     `json:"party"`
}

type StayRequest struct {
	City      string    `json:"city"`
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
	Party     Party     `json:"party"`
}

// SupplierAdapter is the fetch contract for point-to-point transport
// categories (flight, taxi, ferry).
type SupplierAdapter interface {
	Search(ctx context.Context, request *SearchRequest) ([]Offer, error)
}

// HotelAdapter prices a whole stay rather than a single travel date.
type HotelAdapter interface {
	SearchStay(ctx context.Context, request *StayRequest) ([]Offer, error)
}

// LowestPrice picks the cheapest offer; reported false when the list is
// empty.
func LowestPrice(offers []Offer) (Offer, bool) {
	if len(offers) == 0 {
		return Offer{}, false
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Price < best.Price {
			best = o
		}
	}
	return best, true
}
