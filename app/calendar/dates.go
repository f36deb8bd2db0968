package calendar

import (
	"time"

	"github.com/lysyi3m/content-calendar/app/posts"
)

// Mode is the calendar granularity being displayed.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
	ModeAll   Mode = "all"
)

// ParseMode maps a query value to a Mode. Unknown values fall back to day.
func ParseMode(s string) Mode {
	switch m := Mode(s); m {
	case ModeDay, ModeWeek, ModeMonth, ModeAll:
		return m
	default:
		return ModeDay
	}
}

func WeekdayHeaders() []string {
	return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
}

// MonthDates returns every date of t's month in ascending order.
func MonthDates(t time.Time) []time.Time {
	first := posts.MonthStart(t)
	n := DaysInMonth(first)

	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}

func DaysInMonth(t time.Time) int {
	first := posts.MonthStart(t)
	return first.AddDate(0, 1, -1).Day()
}

// WeekStart returns the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	d := posts.DateOf(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// WeekDates returns the Sunday..Saturday week containing t.
func WeekDates(t time.Time) []time.Time {
	start := WeekStart(t)

	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}
