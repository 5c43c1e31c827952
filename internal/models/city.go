package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type City struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name" validate:"required"`
	DestinationID primitive.ObjectID `json:"destination_id" bson:"destination_id" validate:"required"`
	// NearestInternationalAirport is the IATA code used when deriving the
	// bracketing international flights for itineraries that start or end
	// in this city.
	NearestInternationalAirport string    `json:"nearest_international_airport" bson:"nearest_international_airport"`
	Active                      bool      `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt                   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at" bson:"updated_at"`
}

type Destination struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name    string             `json:"name" bson:"name" validate:"required"`
	Country string             `json:"country" bson:"country"`
	// MarkupPercentage is the whole-trip markup applied after the
	// per-category markups.
	MarkupPercentage float64   `json:"markup_percentage" bson:"markup_percentage"`
	Active           bool      `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}
