package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItineraryVersion is a snapshot of the aggregate as it was before a
// mutation. Written by ItineraryRepository.SaveWithHistory together with
// the updated aggregate, so version history is an explicit part of the
// save call rather than a storage-layer side effect.
type ItineraryVersion struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ItineraryID primitive.ObjectID `json:"itinerary_id" bson:"itinerary_id"`
	Version     int64              `json:"version" bson:"version"`
	Snapshot    Itinerary          `json:"snapshot" bson:"snapshot"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
