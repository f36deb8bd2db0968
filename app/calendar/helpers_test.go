package calendar

import (
	"time"

	"github.com/lysyi3m/content-calendar/app/posts"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// exampleSnapshot has posts on 2025-01-05, 2025-01-20 (two posts) and 2025-02-01.
func exampleSnapshot() *posts.Snapshot {
	return posts.NewSnapshot([]posts.Post{
		{ItemName: "February Update", PublishDate: date(2025, 2, 1), SubCategory: "About FH"},
		{ItemName: "New Year", PublishDate: date(2025, 1, 5), SubCategory: "Programs"},
		{ItemName: "Winter Appeal", PublishDate: date(2025, 1, 20), SubCategory: "Programs"},
		{ItemName: "Winter Appeal Reminder", PublishDate: date(2025, 1, 20), SubCategory: "Stories"},
	})
}
