package calendar

import (
	"sort"
	"time"

	"github.com/lysyi3m/content-calendar/app/posts"
)

// MonthNavigation returns the first days of the months before and after selected's month.
// It steps one day across the month boundary and truncates, so the result is
// always exactly one month away.
func MonthNavigation(selected time.Time) (prev, next time.Time) {
	first := posts.MonthStart(selected)
	last := first.AddDate(0, 1, -1)

	prev = posts.MonthStart(first.AddDate(0, 0, -1))
	next = posts.MonthStart(last.AddDate(0, 0, 1))
	return prev, next
}

// DateNavigation returns the neighbours of selected in the ascending distinct
// date list. Both are nil when selected is not in the list.
func DateNavigation(dates []time.Time, selected time.Time) (prev, next *time.Time) {
	i := sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(selected)
	})
	if i == len(dates) || !dates[i].Equal(selected) {
		return nil, nil
	}

	if i > 0 {
		p := dates[i-1]
		prev = &p
	}
	if i < len(dates)-1 {
		n := dates[i+1]
		next = &n
	}
	return prev, next
}
