package utils

import "time"

// StartOfDay truncates to midnight in the value's own location; all
// itinerary day dates are normalized through it.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
