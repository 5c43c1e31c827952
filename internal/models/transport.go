package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransportMode string
type ResourceKind string

const (
	TransportModeFlight TransportMode = "flight"
	TransportModeCar    TransportMode = "car"
	TransportModeFerry  TransportMode = "ferry"

	ResourceKindFlight ResourceKind = "flight"
	ResourceKindTaxi   ResourceKind = "taxi"
	ResourceKindFerry  ResourceKind = "ferry"
	ResourceKindHotel  ResourceKind = "hotel"
)

func (m TransportMode) Valid() bool {
	switch m {
	case TransportModeFlight, TransportModeCar, TransportModeFerry:
		return true
	}
	return false
}

// ResourceKind maps a transport mode to the kind of priced sub-resource
// that backs it. Car legs are priced through the taxi supplier.
func (m TransportMode) ResourceKind() ResourceKind {
	switch m {
	case TransportModeFlight:
		return ResourceKindFlight
	case TransportModeCar:
		return ResourceKindTaxi
	case TransportModeFerry:
		return ResourceKindFerry
	}
	return ""
}

// TransportRef is a mode-tagged reference to at most one priced
// sub-resource. Only the slot matching Mode may be set; all access goes
// through Ref/SetRef/Clear so a mode/reference mismatch cannot be built
// up through normal use.
type TransportRef struct {
	Mode      TransportMode       `json:"mode" bson:"mode"`
	FlightRef *primitive.ObjectID `json:"flight_ref,omitempty" bson:"flight_ref,omitempty"`
	TaxiRef   *primitive.ObjectID `json:"taxi_ref,omitempty" bson:"taxi_ref,omitempty"`
	FerryRef  *primitive.ObjectID `json:"ferry_ref,omitempty" bson:"ferry_ref,omitempty"`
}

func NewTransportRef(mode TransportMode) TransportRef {
	return TransportRef{Mode: mode}
}

// Ref returns the sub-resource reference for the current mode, or nil if
// none has been fetched yet.
func (t *TransportRef) Ref() *primitive.ObjectID {
	switch t.Mode {
	case TransportModeFlight:
		return t.FlightRef
	case TransportModeCar:
		return t.TaxiRef
	case TransportModeFerry:
		return t.FerryRef
	}
	return nil
}

// SetRef stores id in the slot matching the current mode and clears the
// other slots.
func (t *TransportRef) SetRef(id primitive.ObjectID) {
	t.Clear()
	switch t.Mode {
	case TransportModeFlight:
		t.FlightRef = &id
	case TransportModeCar:
		t.TaxiRef = &id
	case TransportModeFerry:
		t.FerryRef = &id
	}
}

func (t *TransportRef) Clear() {
	t.FlightRef = nil
	t.TaxiRef = nil
	t.FerryRef = nil
}

// SetMode switches the transport mode and drops any reference fetched for
// the previous mode. The caller owns deleting the orphaned sub-resource.
func (t *TransportRef) SetMode(mode TransportMode) {
	t.Mode = mode
	t.Clear()
}

type Flight struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Airline       string             `json:"airline" bson:"airline"`
	FlightNumber  string             `json:"flight_number" bson:"flight_number"`
	Origin        string             `json:"origin" bson:"origin"`
	Destination   string             `json:"destination" bson:"destination"`
	DepartureDate time.Time          `json:"departure_date" bson:"departure_date"`
	Price         float64            `json:"price" bson:"price"`
	Currency      string             `json:"currency" bson:"currency" default:"USD"`
	Vendor        string             `json:"vendor" bson:"vendor"`
	International bool               `json:"international" bson:"international"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

type Taxi struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Vendor       string             `json:"vendor" bson:"vendor"`
	VehicleClass string             `json:"vehicle_class" bson:"vehicle_class"`
	Origin       string             `json:"origin" bson:"origin"`
	Destination  string             `json:"destination" bson:"destination"`
	TravelDate   time.Time          `json:"travel_date" bson:"travel_date"`
	Price        float64            `json:"price" bson:"price"`
	Currency     string             `json:"currency" bson:"currency" default:"USD"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

type Ferry struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Operator    string             `json:"operator" bson:"operator"`
	Origin      string             `json:"origin" bson:"origin"`
	Destination string             `json:"destination" bson:"destination"`
	TravelDate  time.Time          `json:"travel_date" bson:"travel_date"`
	Price       float64            `json:"price" bson:"price"`
	Currency    string             `json:"currency" bson:"currency" default:"USD"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
