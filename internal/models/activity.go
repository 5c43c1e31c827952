package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ActivityCategoryLeisure = "leisure"

// Activity is a catalog entry. It references its city by id only; the
// city never holds a list of activities back.
type Activity struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CityID          primitive.ObjectID `json:"city_id" bson:"city_id" validate:"required"`
	Name            string             `json:"name" bson:"name" validate:"required"`
	Category        string             `json:"category" bson:"category"`
	DurationMinutes int                `json:"duration_minutes" bson:"duration_minutes"`
	OpensAt         string             `json:"opens_at" bson:"opens_at"`
	ClosesAt        string             `json:"closes_at" bson:"closes_at"`
	PricePerPerson  float64            `json:"price_per_person" bson:"price_per_person"`
	IsLeisure       bool               `json:"is_leisure" bson:"is_leisure"`
	Active          bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// ScheduledActivity is a dated placement of a catalog activity inside a
// day. Pricing fields are denormalized so the cost walk does not need
// catalog lookups.
type ScheduledActivity struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	ActivityID      primitive.ObjectID `json:"activity_id" bson:"activity_id"`
	Name            string             `json:"name" bson:"name"`
	Category        string             `json:"category" bson:"category"`
	StartTime       string             `json:"start_time" bson:"start_time"`
	DurationMinutes int                `json:"duration_minutes" bson:"duration_minutes"`
	PricePerPerson  float64            `json:"price_per_person" bson:"price_per_person"`
	IsLeisure       bool               `json:"is_leisure" bson:"is_leisure"`
}

// ScheduleActivity instantiates a catalog activity as a scheduled slot.
func ScheduleActivity(a *Activity) ScheduledActivity {
	return ScheduledActivity{
		ID:              primitive.NewObjectID(),
		ActivityID:      a.ID,
		Name:            a.Name,
		Category:        a.Category,
		StartTime:       a.OpensAt,
		DurationMinutes: a.DurationMinutes,
		PricePerPerson:  a.PricePerPerson,
		IsLeisure:       a.IsLeisure,
	}
}

// ApplyCatalogActivity swaps the catalog content of an existing slot in
// place, keeping its id and start time.
func (s *ScheduledActivity) ApplyCatalogActivity(a *Activity) {
	s.ActivityID = a.ID
	s.Name = a.Name
	s.Category = a.Category
	s.DurationMinutes = a.DurationMinutes
	s.PricePerPerson = a.PricePerPerson
	s.IsLeisure = a.IsLeisure
}
