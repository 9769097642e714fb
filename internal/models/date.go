package models

import "time"

const dateKeyLayout = "2006-01-02"

// ParseDateKey parses a YYYY-MM-DD date key at local midday. Normalizing to
// midday keeps date-only comparisons stable when stored date strings cross
// timezone boundaries, a common source of off-by-one-day report bugs.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local), nil
}

// FormatDateKey renders t as a YYYY-MM-DD date key.
func FormatDateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// MonthKeys returns the date keys of the first and last day of a month,
// for use as an inclusive aggregation interval.
func MonthKeys(year int, month time.Month) (start, end string) {
	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return FormatDateKey(first), FormatDateKey(last)
}

// SundaysOfMonth returns the date keys of every Sunday in a month, in order.
// Sessions happen weekly on Sundays, so these are the month's session slots.
func SundaysOfMonth(year int, month time.Month) []string {
	out := []string{}
	for d := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			out = append(out, FormatDateKey(d))
		}
	}
	return out
}
