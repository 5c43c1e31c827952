package services

import "errors"

// Validation errors: reported with a 4xx status, never retried.
var (
	ErrInvalidPosition  = errors.New("city position is out of range")
	ErrLastLeg          = errors.New("an itinerary must keep at least one city")
	ErrInsufficientDays = errors.New("a city leg must keep at least one day")
	ErrInvalidMode      = errors.New("transport mode must be flight, car or ferry")
	ErrInvalidLegIndex  = errors.New("city leg index is out of range")
)

// Not-found errors: reported, not retried.
var (
	ErrItineraryNotFound = errors.New("itinerary not found")
	ErrActivityNotFound  = errors.New("scheduled activity not found")
	ErrDiscountNotFound  = errors.New("discount not found")
	ErrCityNotFound      = errors.New("city not found")
)

// ErrNotOwner is returned when a caller addresses an itinerary that
// belongs to a different user.
var ErrNotOwner = errors.New("itinerary belongs to another user")

// Discount rejections: surfaced as messages or a zero amount, never fatal.
var (
	ErrDiscountNotGeneral     = errors.New("discount is not a coupon discount")
	ErrDiscountAlreadyApplied = errors.New("discount already applied to this itinerary")
	ErrDiscountInactive       = errors.New("discount is not active")
	ErrUserNotEligible        = errors.New("user is not eligible for this discount")
)

// ErrStaleWrite means another writer updated the aggregate first; the
// caller must retry the whole mutation.
var ErrStaleWrite = errors.New("itinerary was modified concurrently")
