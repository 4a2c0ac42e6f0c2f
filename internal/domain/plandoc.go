// internal/domain/plandoc.go
package domain

import "strings"

// PlanDocument is the structured plan content returned by the plan-content
// provider. Exactly one of Days or Weeks is expected to be populated,
// depending on the plan shape; the raw blob (including any fields not modeled
// here) is kept on the Plan for traceability.
type PlanDocument struct {
	Name  string      `json:"plan_name,omitempty"`
	Goal  string      `json:"primary_goal,omitempty"`
	Days  []DayEntry  `json:"days,omitempty"`
	Weeks []WeekEntry `json:"weeks,omitempty"`
}

// WeekEntry groups one week of a multi-week block.
type WeekEntry struct {
	Days []DayEntry `json:"days"`
}

// DayEntry is one day-labeled workout description.
type DayEntry struct {
	Day             string            `json:"day"` // weekday name; unknown labels fall back to Monday
	Title           string            `json:"title"`
	Category        string            `json:"category"`
	Description     string            `json:"description,omitempty"`
	DurationMinutes int               `json:"duration_minutes,omitempty"`
	Intensity       Intensity         `json:"intensity,omitempty"`
	TargetHRZone    string            `json:"target_hr_zone,omitempty"`
	Steps           []TaskStep        `json:"steps,omitempty"`
	Supplementary   []SupplementEntry `json:"supplementary,omitempty"`
}

// SupplementEntry is an auxiliary activity attached to a day (e.g. mobility
// work alongside a main run). It materializes as its own task on the same
// date with a distinct slot.
type SupplementEntry struct {
	Title           string    `json:"title"`
	Category        string    `json:"category,omitempty"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Intensity       Intensity `json:"intensity,omitempty"`
}

// WeekGroups returns the document's day entries grouped by week for the given
// shape. A single-week document yields one group; if its flat day list is
// empty but weeks are present, the first week is used (upstream generators
// sometimes wrap a single week in the block structure).
func (d PlanDocument) WeekGroups(shape PlanShape) [][]DayEntry {
	if shape == ShapeMultiWeekBlock {
		groups := make([][]DayEntry, 0, len(d.Weeks))
		for _, w := range d.Weeks {
			groups = append(groups, w.Days)
		}
		return groups
	}
	days := d.Days
	if len(days) == 0 && len(d.Weeks) > 0 {
		days = d.Weeks[0].Days
	}
	return [][]DayEntry{days}
}

// DayCount is the total number of day entries the document would materialize
// as main tasks, under the given shape.
func (d PlanDocument) DayCount(shape PlanShape) int {
	n := 0
	for _, g := range d.WeekGroups(shape) {
		n += len(g)
	}
	return n
}

var weekdayOffsets = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// WeekdayOffset maps a weekday label to its day offset from Monday. Unknown
// labels return (0, false): callers default to Monday rather than rejecting
// the entry.
func WeekdayOffset(label string) (int, bool) {
	off, ok := weekdayOffsets[strings.ToLower(strings.TrimSpace(label))]
	return off, ok
}
