// Package calendar generates the date sequences of a 4-week meal plan window.
//
// Dates are calendar dates: every value returned is midnight UTC of the input's
// calendar day, so adding a day is always a 24 hour step.
package calendar

import (
	"fmt"
	"time"

	"github.com/fdg312/meal-hub/internal/apperr"
)

const (
	DaysPerWeek  = 7
	WeeksPerPlan = 4
	PlanDays     = DaysPerWeek * WeeksPerPlan

	// DateLayout is the wire and key format of a calendar date.
	DateLayout = "2006-01-02"
)

// Date truncates t to midnight UTC of its calendar date in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d.
func AddDays(d time.Time, n int) time.Time {
	return Date(d).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b (negative when b
// is before a).
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// EndDate returns the last day of the 28-day window starting at start.
func EndDate(start time.Time) time.Time {
	return AddDays(start, PlanDays-1)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// FormatDate formats d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return Date(d).Format(DateLayout)
}

func checkWeekIndex(weekIndex int) error {
	if weekIndex < 0 || weekIndex >= WeeksPerPlan {
		return apperr.Newf(apperr.CodeOutOfRange, "week index %d out of range 0-%d", weekIndex, WeeksPerPlan-1)
	}
	return nil
}

// WeekStartDate returns start + weekIndex*7 days.
func WeekStartDate(start time.Time, weekIndex int) (time.Time, error) {
	if err := checkWeekIndex(weekIndex); err != nil {
		return time.Time{}, err
	}
	return AddDays(start, weekIndex*DaysPerWeek), nil
}

// WeekDates returns the 7 consecutive dates of week weekIndex (0-3).
func WeekDates(start time.Time, weekIndex int) ([]time.Time, error) {
	first, err := WeekStartDate(start, weekIndex)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, DaysPerWeek)
	for i := range dates {
		dates[i] = AddDays(first, i)
	}
	return dates, nil
}

// FourWeekDates returns all 28 dates of the window in order.
func FourWeekDates(start time.Time) []time.Time {
	dates := make([]time.Time, PlanDays)
	for i := range dates {
		dates[i] = AddDays(start, i)
	}
	return dates
}

// WeekIndexFor reports which week (0-3) candidate falls in. The second result
// is false when candidate lies outside [start, start+27].
func WeekIndexFor(start, candidate time.Time) (int, bool) {
	offset := DaysBetween(start, candidate)
	if offset < 0 || offset >= PlanDays {
		return 0, false
	}
	return offset / DaysPerWeek, true
}

// InWindow reports whether d lies inside the 28-day window starting at start.
func InWindow(start, d time.Time) bool {
	_, ok := WeekIndexFor(start, d)
	return ok
}

// FormatRange renders "M/D - M/D", adding the year to both ends when they
// differ.
func FormatRange(start, end time.Time) string {
	start, end = Date(start), Date(end)
	if start.Year() == end.Year() {
		return fmt.Sprintf("%d/%d - %d/%d", start.Month(), start.Day(), end.Month(), end.Day())
	}
	return fmt.Sprintf("%d/%d/%d - %d/%d/%d",
		start.Month(), start.Day(), start.Year(),
		end.Month(), end.Day(), end.Year())
}
