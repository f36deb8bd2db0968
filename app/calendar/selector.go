package calendar

import (
	"sort"
	"time"

	"github.com/lysyi3m/content-calendar/app/posts"
)

// Day groups the posts published on one date.
type Day struct {
	Date  time.Time
	Posts []posts.Post
}

// Selection is the per-request result of choosing a view.
type Selection struct {
	Mode         Mode
	SelectedDate time.Time
	VisibleDates []time.Time
	Posts        []posts.Post // day and all modes
	Days         []Day        // week and month modes, one entry per visible date
	PrevDate     *time.Time
	NextDate     *time.Time
}

type Selector struct {
	now func() time.Time
}

func NewSelector() *Selector {
	return &Selector{now: time.Now}
}

// WithClock replaces the source of today's date.
func (s *Selector) WithClock(now func() time.Time) *Selector {
	s.now = now
	return s
}

// DefaultDate is the latest date in the snapshot, or today when it is empty.
func (s *Selector) DefaultDate(snapshot *posts.Snapshot) time.Time {
	if latest, ok := snapshot.Latest(); ok {
		return latest
	}
	return posts.DateOf(s.now().In(time.Local))
}

// Run selects the posts and navigation for mode around selected.
// A nil selected uses DefaultDate.
func (s *Selector) Run(snapshot *posts.Snapshot, mode Mode, selected *time.Time) *Selection {
	var date time.Time
	if selected != nil {
		date = posts.DateOf(*selected)
	} else {
		date = s.DefaultDate(snapshot)
	}

	sel := &Selection{
		Mode:         mode,
		SelectedDate: date,
	}

	switch mode {
	case ModeMonth:
		sel.VisibleDates = MonthDates(date)
		sel.Days = groupByDate(snapshot.Posts, sel.VisibleDates)
	case ModeWeek:
		sel.VisibleDates = WeekDates(date)
		sel.Days = groupByDate(snapshot.Posts, sel.VisibleDates)
	case ModeAll:
		sel.Posts = postsUpTo(snapshot.Posts, date)
		sel.VisibleDates = distinctDescending(sel.Posts)
	default:
		sel.Mode = ModeDay
		sel.VisibleDates = []time.Time{date}
		sel.Posts = postsOn(snapshot.Posts, date)
	}

	if sel.Mode == ModeMonth {
		prev, next := MonthNavigation(date)
		sel.PrevDate, sel.NextDate = &prev, &next
	} else {
		sel.PrevDate, sel.NextDate = DateNavigation(snapshot.Dates, date)
	}

	return sel
}

// Decorate resolves images and category colors on every selected post.
func (sel *Selection) Decorate(resolver *posts.ImageResolver, palette *posts.Palette) {
	decorate := func(list []posts.Post) {
		for i := range list {
			resolver.Run(&list[i])
			list[i].CategoryColor = palette.Color(list[i].SubCategory)
		}
	}

	decorate(sel.Posts)
	for i := range sel.Days {
		decorate(sel.Days[i].Posts)
	}
}

// PostCount is the number of posts in the selection.
func (sel *Selection) PostCount() int {
	n := len(sel.Posts)
	for _, d := range sel.Days {
		n += len(d.Posts)
	}
	return n
}

func postsOn(all []posts.Post, date time.Time) []posts.Post {
	matched := make([]posts.Post, 0)
	for _, p := range all {
		if p.PublishDate.Equal(date) {
			matched = append(matched, p)
		}
	}
	return matched
}

func postsUpTo(all []posts.Post, date time.Time) []posts.Post {
	matched := make([]posts.Post, 0, len(all))
	for _, p := range all {
		if !p.PublishDate.After(date) {
			matched = append(matched, p)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishDate.After(matched[j].PublishDate)
	})
	return matched
}

func groupByDate(all []posts.Post, dates []time.Time) []Day {
	days := make([]Day, len(dates))
	index := make(map[int64]int, len(dates))
	for i, d := range dates {
		days[i] = Day{Date: d, Posts: make([]posts.Post, 0)}
		index[d.Unix()] = i
	}

	for _, p := range all {
		if i, ok := index[p.PublishDate.Unix()]; ok {
			days[i].Posts = append(days[i].Posts, p)
		}
	}
	return days
}

func distinctDescending(sorted []posts.Post) []time.Time {
	dates := make([]time.Time, 0)
	for _, p := range sorted {
		if n := len(dates); n > 0 && dates[n-1].Equal(p.PublishDate) {
			continue
		}
		dates = append(dates, p.PublishDate)
	}
	return dates
}
