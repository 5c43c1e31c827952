package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string
type DiscountUserType string

const (
	// DiscountTypeGeneral is explicitly activated by the traveller with a
	// coupon-style action.
	DiscountTypeGeneral DiscountType = "general"
	// DiscountTypeCouponless is applied automatically for its destination.
	DiscountTypeCouponless DiscountType = "couponless"

	DiscountUserAll DiscountUserType = "all"
	DiscountUserNew DiscountUserType = "new"
	DiscountUserOld DiscountUserType = "old"
)

// ApplicableOn flags the pricing categories a discount can reduce. For
// general discounts the first flag set wins, checked in the order
// flights, hotels, activities, package.
type ApplicableOn struct {
	Package            bool `json:"package" bson:"package"`
	Flights            bool `json:"flights" bson:"flights"`
	Hotels             bool `json:"hotels" bson:"hotels"`
	Activities         bool `json:"activities" bson:"activities"`
	PredefinedPackages bool `json:"predefined_packages" bson:"predefined_packages"`
}

type Discount struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Code               string              `json:"code" bson:"code" validate:"required"`
	Name               string              `json:"name" bson:"name"`
	Description        string              `json:"description" bson:"description"`
	DiscountType       DiscountType        `json:"discount_type" bson:"discount_type" validate:"required"`
	UserType           DiscountUserType    `json:"user_type" bson:"user_type" default:"all"`
	ApplicableOn       ApplicableOn        `json:"applicable_on" bson:"applicable_on"`
	DiscountPercentage float64             `json:"discount_percentage" bson:"discount_percentage" validate:"required"`
	MaxDiscount        float64             `json:"max_discount" bson:"max_discount"`
	NoLimit            bool                `json:"no_limit" bson:"no_limit"`
	NoOfUsesPerUser    int                 `json:"no_of_uses_per_user" bson:"no_of_uses_per_user" default:"1"`
	NoOfUsersTotal     int                 `json:"no_of_users_total" bson:"no_of_users_total"`
	DestinationID      *primitive.ObjectID `json:"destination_id" bson:"destination_id,omitempty"`
	Active             bool                `json:"is_active" bson:"is_active" default:"true"`
	ValidFrom          time.Time           `json:"valid_from" bson:"valid_from"`
	ValidUntil         time.Time           `json:"valid_until" bson:"valid_until"`
	CreatedAt          time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" bson:"updated_at"`
}

func (d *Discount) ValidAt(t time.Time) bool {
	if !d.Active {
		return false
	}
	if !d.ValidFrom.IsZero() && t.Before(d.ValidFrom) {
		return false
	}
	if !d.ValidUntil.IsZero() && t.After(d.ValidUntil) {
		return false
	}
	return true
}

// DiscountUsage is one ledger row per application; usage caps are derived
// from this collection, never from counters on the discount itself.
type DiscountUsage struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DiscountID  primitive.ObjectID `json:"discount_id" bson:"discount_id"`
	UserID      primitive.ObjectID `json:"user_id" bson:"user_id"`
	ItineraryID primitive.ObjectID `json:"itinerary_id" bson:"itinerary_id"`
	Amount      float64            `json:"amount" bson:"amount"`
	UsedAt      time.Time          `json:"used_at" bson:"used_at"`
}
