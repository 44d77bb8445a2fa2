package model

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts seen in the holiday feed, most specific first.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339,
	"2006-01-02",
}

// ParseDate parses a feed date string and keeps only its calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}

// Day returns t's calendar date, in t's own location, as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Season names the season of t's month.
func Season(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return "Lente"
	case time.June, time.July, time.August:
		return "Zomer"
	case time.September, time.October, time.November:
		return "Herfst"
	default:
		return "Winter"
	}
}
