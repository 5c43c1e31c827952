package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Hotel struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	CityName  string             `json:"city_name" bson:"city_name"`
	Stars     int                `json:"stars" bson:"stars"`
	CheckIn   time.Time          `json:"check_in" bson:"check_in"`
	CheckOut  time.Time          `json:"check_out" bson:"check_out"`
	RoomCount int                `json:"room_count" bson:"room_count"`
	// Price is the per-room price for the whole stay.
	Price     float64   `json:"price" bson:"price"`
	Currency  string    `json:"currency" bson:"currency" default:"USD"`
	Vendor    string    `json:"vendor" bson:"vendor"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
