package posts

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetDateLayout is the day/month/year text layout of the publish date column.
const SheetDateLayout = "2/1/2006"

// DateOf truncates t to its calendar date at 00:00 UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// ParseSheetDate accepts an Excel serial number or a DD/MM/YYYY string.
func ParseSheetDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return DateOf(t), true
	}

	t, err := time.Parse(SheetDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return DateOf(t), true
}
