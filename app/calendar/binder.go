package calendar

import (
	"fmt"
	"time"

	"github.com/lysyi3m/content-calendar/app/posts"
)

type WeekOption struct {
	Start time.Time
	End   time.Time
	Label string
}

// ViewModel is everything the index template renders.
type ViewModel struct {
	Mode           Mode
	SelectedDate   time.Time
	WeekStart      time.Time // Sunday of the selected week
	Posts          []posts.Post
	Days           []Day
	LeadingBlanks  int // empty grid cells before the first visible day
	PrevDate       *time.Time
	NextDate       *time.Time
	Dates          []time.Time
	MonthStarts    []time.Time
	WeekOptions    []WeekOption
	WeekdayHeaders []string
	Version        string
}

type Binder struct {
	version string
}

func NewBinder(version string) *Binder {
	return &Binder{version: version}
}

// Run assembles the view model. The selection must already be decorated.
func (b *Binder) Run(snapshot *posts.Snapshot, sel *Selection) *ViewModel {
	vm := &ViewModel{
		Mode:           sel.Mode,
		SelectedDate:   sel.SelectedDate,
		WeekStart:      WeekStart(sel.SelectedDate),
		Posts:          sel.Posts,
		Days:           sel.Days,
		PrevDate:       sel.PrevDate,
		NextDate:       sel.NextDate,
		Dates:          snapshot.Dates,
		MonthStarts:    snapshot.MonthStarts,
		WeekOptions:    weekOptions(snapshot.Dates),
		WeekdayHeaders: WeekdayHeaders(),
		Version:        b.version,
	}

	if vm.Posts == nil {
		vm.Posts = []posts.Post{}
	}
	if sel.Mode == ModeMonth && len(sel.Days) > 0 {
		vm.LeadingBlanks = int(sel.Days[0].Date.Weekday())
	}

	return vm
}

func weekOptions(dates []time.Time) []WeekOption {
	options := make([]WeekOption, 0)
	for _, d := range dates {
		start := WeekStart(d)
		if n := len(options); n > 0 && options[n-1].Start.Equal(start) {
			continue
		}
		end := start.AddDate(0, 0, 6)
		options = append(options, WeekOption{
			Start: start,
			End:   end,
			Label: fmt.Sprintf("Week of %s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006")),
		})
	}
	return options
}
