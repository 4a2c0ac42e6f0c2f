package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeekdayOffset(t *testing.T) {
	cases := []struct {
		label  string
		offset int
		known  bool
	}{
		{"Monday", 0, true},
		{"monday", 0, true},
		{"  Sunday ", 6, true},
		{"WEDNESDAY", 2, true},
		{"Funday", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		off, ok := WeekdayOffset(tc.label)
		require.Equal(t, tc.offset, off, "label %q", tc.label)
		require.Equal(t, tc.known, ok, "label %q", tc.label)
	}
}

func TestWeekGroupsSingleWeek(t *testing.T) {
	doc := PlanDocument{
		Days: []DayEntry{{Day: "Monday"}, {Day: "Friday"}},
	}
	groups := doc.WeekGroups(ShapeSingleWeek)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2)
	require.Equal(t, 2, doc.DayCount(ShapeSingleWeek))
}

func TestWeekGroupsSingleWeekFallsBackToFirstWeek(t *testing.T) {
	doc := PlanDocument{
		Weeks: []WeekEntry{
			{Days: []DayEntry{{Day: "Tuesday"}}},
			{Days: []DayEntry{{Day: "Thursday"}}},
		},
	}
	groups := doc.WeekGroups(ShapeSingleWeek)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 1)
	require.Equal(t, "Tuesday", groups[0][0].Day)
}

func TestWeekGroupsMultiWeek(t *testing.T) {
	doc := PlanDocument{
		Weeks: []WeekEntry{
			{Days: []DayEntry{{Day: "Monday"}, {Day: "Wednesday"}}},
			{Days: []DayEntry{{Day: "Monday"}}},
		},
	}
	groups := doc.WeekGroups(ShapeMultiWeekBlock)
	require.Len(t, groups, 2)
	require.Equal(t, 3, doc.DayCount(ShapeMultiWeekBlock))
}

func TestDayCountEmptyDocument(t *testing.T) {
	var doc PlanDocument
	require.Equal(t, 0, doc.DayCount(ShapeSingleWeek))
	require.Equal(t, 0, doc.DayCount(ShapeMultiWeekBlock))
}
