package validators

import (
	"time"

	"voyago/internal/models"
)

func ValidateCreateItineraryRequest(req *models.CreateItineraryRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.StartDate != "" {
		if start, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			if start.Before(time.Now().Truncate(24 * time.Hour)) {
				errors = append(errors, ValidationError{
					Field:   "start_date",
					Message: "Start date must not be in the past",
				})
			}
		}
	}

	if req.Rooms.Travellers() > 0 && len(req.Rooms.ChildAges) != req.Rooms.Children {
		errors = append(errors, ValidationError{
			Field:   "rooms.child_ages",
			Message: "One age per child is required",
		})
	}

	seen := make(map[string]bool, len(req.Cities))
	for _, city := range req.Cities {
		if seen[city] {
			errors = append(errors, ValidationError{
				Field:   "cities",
				Message: "Cities must not repeat",
			})
			break
		}
		seen[city] = true
	}

	return errors
}

func ValidateAddCityRequest(req *models.AddCityRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateReplaceCityRequest(req *models.ReplaceCityRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateAddDaysRequest(req *models.AddDaysRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateDeleteDaysRequest(req *models.DeleteDaysRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateTransportModeRequest(req *models.TransportModeRequest) ValidationErrors {
	errors := ValidateStruct(req)
	if req.NewMode != "" && !models.TransportMode(req.NewMode).Valid() {
		errors = append(errors, ValidationError{
			Field:   "newMode",
			Message: "Transport mode must be flight, car or ferry",
		})
	}
	return errors
}

func ValidateReplaceActivityRequest(req *models.ReplaceActivityRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateUpdateDetailsRequest(req *models.UpdateDetailsRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.NewStartDate == "" && req.TravellingWith == "" && req.Rooms == nil {
		errors = append(errors, ValidationError{
			Field:   "request",
			Message: "At least one field must be provided",
		})
	}
	if req.Rooms != nil {
		if req.Rooms.Adults < 1 {
			errors = append(errors, ValidationError{
				Field:   "rooms.adults",
				Message: "At least one adult is required",
			})
		}
		if req.Rooms.RoomCount < 1 {
			errors = append(errors, ValidationError{
				Field:   "rooms.room_count",
				Message: "At least one room is required",
			})
		}
		if len(req.Rooms.ChildAges) != req.Rooms.Children {
			errors = append(errors, ValidationError{
				Field:   "rooms.child_ages",
				Message: "One age per child is required",
			})
		}
	}
	return errors
}
