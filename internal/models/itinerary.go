package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rooms is the party composition, constant across the whole itinerary.
type Rooms struct {
	Adults    int   `json:"adults" bson:"adults" validate:"required,min=1"`
	Children  int   `json:"children" bson:"children" validate:"min=0"`
	ChildAges []int `json:"child_ages" bson:"child_ages"`
	RoomCount int   `json:"room_count" bson:"room_count" validate:"required,min=1"`
}

func (r Rooms) Travellers() int {
	return r.Adults + r.Children
}

type Day struct {
	DayNumber  int                 `json:"day_number" bson:"day_number"`
	Date       time.Time           `json:"date" bson:"date"`
	Activities []ScheduledActivity `json:"activities" bson:"activities"`
}

// CityLeg is one city's segment of the itinerary: the stay plus the
// transport that brings the traveller into the city. The first leg has no
// inbound domestic transport; arrival is covered by the international
// bracket when one is configured.
type CityLeg struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id"`
	CityID    primitive.ObjectID  `json:"city_id" bson:"city_id"`
	CityName  string              `json:"city_name" bson:"city_name"`
	StayDays  int                 `json:"stay_days" bson:"stay_days"`
	NextCity  string              `json:"next_city,omitempty" bson:"next_city,omitempty"`
	Transport TransportRef        `json:"transport" bson:"transport"`
	HotelRef  *primitive.ObjectID `json:"hotel_ref,omitempty" bson:"hotel_ref,omitempty"`
	Days      []Day               `json:"days" bson:"days"`
}

func (l *CityLeg) FirstDay() *Day {
	if len(l.Days) == 0 {
		return nil
	}
	return &l.Days[0]
}

func (l *CityLeg) LastDay() *Day {
	if len(l.Days) == 0 {
		return nil
	}
	return &l.Days[len(l.Days)-1]
}

type Itinerary struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Title         string             `json:"title" bson:"title"`
	DestinationID primitive.ObjectID `json:"destination_id" bson:"destination_id"`
	// Origin is the traveller's home city, the anchor for the bracketing
	// international flights.
	Origin         string    `json:"origin" bson:"origin"`
	StartDate      time.Time `json:"start_date" bson:"start_date" validate:"required"`
	TravellingWith string    `json:"travelling_with" bson:"travelling_with"`
	Rooms          Rooms     `json:"rooms" bson:"rooms"`
	Legs           []CityLeg `json:"legs" bson:"legs"`

	IncludeInternationalFlights bool                 `json:"include_international_flights" bson:"include_international_flights"`
	InternationalFlights        []primitive.ObjectID `json:"international_flights" bson:"international_flights"`

	// Per-category subtotals, marked up, pre-discount.
	InternationalFlightTotal float64 `json:"international_flight_total" bson:"international_flight_total"`
	FlightTotal              float64 `json:"flight_total" bson:"flight_total"`
	TaxiTotal                float64 `json:"taxi_total" bson:"taxi_total"`
	FerryTotal               float64 `json:"ferry_total" bson:"ferry_total"`
	HotelTotal               float64 `json:"hotel_total" bson:"hotel_total"`
	ActivityTotal            float64 `json:"activity_total" bson:"activity_total"`

	// TotalPrice is post-discount, pre-tax. PriceWithoutCoupon is the
	// shadow total used as the tax base.
	TotalPrice         float64 `json:"total_price" bson:"total_price"`
	PriceWithoutCoupon float64 `json:"price_without_coupon" bson:"price_without_coupon"`
	Tax                float64 `json:"tax" bson:"tax"`
	ServiceFee         float64 `json:"service_fee" bson:"service_fee"`
	GrandTotal         float64 `json:"grand_total" bson:"grand_total"`
	CurrentTotalPrice  float64 `json:"current_total_price" bson:"current_total_price"`
	CouponlessDiscount float64 `json:"couponless_discount" bson:"couponless_discount"`
	GeneralDiscount    float64 `json:"general_discount" bson:"general_discount"`

	// Discounts is the append-only list of applied discount ids; a given
	// id appears at most once.
	Discounts []primitive.ObjectID `json:"discounts" bson:"discounts"`

	// Version is checked on every write; a stale write is rejected.
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (it *Itinerary) HasDiscount(id primitive.ObjectID) bool {
	for _, d := range it.Discounts {
		if d == id {
			return true
		}
	}
	return false
}

func (it *Itinerary) TotalDays() int {
	total := 0
	for i := range it.Legs {
		total += len(it.Legs[i].Days)
	}
	return total
}

// EndDate is the date of the last day of the last leg.
func (it *Itinerary) EndDate() time.Time {
	if len(it.Legs) == 0 {
		return it.StartDate
	}
	last := it.Legs[len(it.Legs)-1].LastDay()
	if last == nil {
		return it.StartDate
	}
	return last.Date
}

// FindScheduledActivity locates a scheduled slot anywhere in the tree.
func (it *Itinerary) FindScheduledActivity(id primitive.ObjectID) (legIdx, dayIdx, actIdx int, ok bool) {
	for li := range it.Legs {
		for di := range it.Legs[li].Days {
			for ai := range it.Legs[li].Days[di].Activities {
				if it.Legs[li].Days[di].Activities[ai].ID == id {
					return li, di, ai, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// Clone deep-copies the aggregate so a mutation can be computed fully in
// memory before anything is persisted.
func (it *Itinerary) Clone() *Itinerary {
	out := *it
	out.Legs = make([]CityLeg, len(it.Legs))
	for i := range it.Legs {
		leg := it.Legs[i]
		if leg.HotelRef != nil {
			ref := *leg.HotelRef
			leg.HotelRef = &ref
		}
		if r := leg.Transport.FlightRef; r != nil {
			ref := *r
			leg.Transport.FlightRef = &ref
		}
		if r := leg.Transport.TaxiRef; r != nil {
			ref := *r
			leg.Transport.TaxiRef = &ref
		}
		if r := leg.Transport.FerryRef; r != nil {
			ref := *r
			leg.Transport.FerryRef = &ref
		}
		leg.Days = make([]Day, len(it.Legs[i].Days))
		for j := range it.Legs[i].Days {
			day := it.Legs[i].Days[j]
			day.Activities = append([]ScheduledActivity(nil), day.Activities...)
			leg.Days[j] = day
		}
		out.Legs[i] = leg
	}
	out.InternationalFlights = append([]primitive.ObjectID(nil), it.InternationalFlights...)
	out.Discounts = append([]primitive.ObjectID(nil), it.Discounts...)
	out.Rooms.ChildAges = append([]int(nil), it.Rooms.ChildAges...)
	return &out
}
