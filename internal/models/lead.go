package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead is a CRM record written as a side effect of itinerary creation.
// It carries no pricing invariants.
type Lead struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"user_id" bson:"user_id"`
	ItineraryID primitive.ObjectID `json:"itinerary_id" bson:"itinerary_id"`
	Destination string             `json:"destination" bson:"destination"`
	StartDate   time.Time          `json:"start_date" bson:"start_date"`
	Travellers  int                `json:"travellers" bson:"travellers"`
	Source      string             `json:"source" bson:"source" default:"itinerary"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
