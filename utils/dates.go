package utils

import (
	"fmt"
	"time"

	"nutridiary/models"
)

// ParseDate parses a YYYY-MM-DD diary date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(models.DateLayout) }

// AddDays shifts a diary date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DateRange lists every date from start to end inclusive.
func DateRange(start, end string) ([]string, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, FormatDate(d))
	}
	return out, nil
}

// WeekDates returns the seven dates starting at weekStart.
func WeekDates(weekStart string) ([]string, error) {
	end, err := AddDays(weekStart, 6)
	if err != nil {
		return nil, err
	}
	return DateRange(weekStart, end)
}

// StartOfWeek returns the Monday of the week containing date.
func StartOfWeek(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return FormatDate(t.AddDate(0, 0, -(wd - 1))), nil
}
