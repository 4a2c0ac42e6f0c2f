// internal/domain/activity.go
package domain

import (
	"math"
	"time"
)

// Activity is one recorded real-world session as reported by the
// activity-history provider. The caller resolves the window and passes
// activities in; this subsystem never fetches them itself.
type Activity struct {
	ID              string    `json:"id"`
	Name            string    `json:"name,omitempty"`
	Type            string    `json:"type"` // provider type key, e.g. "running", "strength_training"
	Date            time.Time `json:"date"` // local calendar day the activity started
	DurationSeconds float64   `json:"durationSeconds,omitempty"`
	Calories        int       `json:"calories,omitempty"`
	AvgHR           int       `json:"avgHr,omitempty"`
}

// DurationMinutes converts the recorded duration to whole minutes.
func (a Activity) DurationMinutes() int {
	return int(math.Round(a.DurationSeconds / 60))
}

// SameCalendarDay reports whether two timestamps fall on the same calendar
// day, ignoring the time-of-day component.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
