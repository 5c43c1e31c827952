package models

// Request bodies for the itinerary endpoints. Path parameters (itinerary
// id, leg index, scheduled activity id) are bound separately by the
// handler.

type CreateItineraryRequest struct {
	Title                       string   `json:"title"`
	Origin                      string   `json:"origin" validate:"required"`
	DestinationID               string   `json:"destination_id" validate:"required,object_id"`
	Cities                      []string `json:"cities" validate:"required,min=1,dive,required"`
	StartDate                   string   `json:"start_date" validate:"required,iso_date"`
	TravellingWith              string   `json:"travelling_with"`
	Rooms                       Rooms    `json:"rooms" validate:"required"`
	IncludeInternationalFlights bool     `json:"include_international_flights"`
}

type AddCityRequest struct {
	NewCity  string `json:"newCity" validate:"required"`
	Position *int   `json:"position" validate:"required,min=0"`
}

type ReplaceCityRequest struct {
	NewCity string `json:"newCity" validate:"required"`
}

type AddDaysRequest struct {
	AdditionalDays int `json:"additionalDays" validate:"required,min=1"`
}

type DeleteDaysRequest struct {
	DaysToDelete int `json:"daysToDelete" validate:"required,min=1"`
}

type TransportModeRequest struct {
	NewMode string `json:"newMode" validate:"required"`
}

type ReplaceActivityRequest struct {
	NewActivityID string `json:"newActivityId" validate:"required,object_id"`
}

type UpdateDetailsRequest struct {
	NewStartDate   string `json:"newStartDate" validate:"omitempty,iso_date"`
	TravellingWith string `json:"travellingWith"`
	Rooms          *Rooms `json:"rooms"`
}
