// Package datekey converts between calendar dates and their canonical
// YYYY-MM-DD string form, the identity used for all day-level documents.
package datekey

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Key is the canonical YYYY-MM-DD identity of a calendar day.
type Key string

// FromTime derives the key for the calendar day containing t, in t's location.
func FromTime(t time.Time) Key {
	return Key(t.Format(layout))
}

// Parse converts a key back to the calendar day it names, at midnight local time.
func Parse(k Key) (time.Time, error) {
	t, err := time.ParseInLocation(layout, string(k), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", k, err)
	}
	return t, nil
}

func (k Key) String() string { return string(k) }

// Valid reports whether k is a well-formed date key.
func (k Key) Valid() bool {
	_, err := Parse(k)
	return err == nil
}

// MonthKey returns the YYYY-MM key of the month containing t, used for
// monthly goal documents.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey converts a YYYY-MM key to the first day of that month.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month key %q: %w", key, err)
	}
	return t, nil
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (first, last time.Time) {
	year, month, _ := t.Date()
	first = time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	last = first.AddDate(0, 1, -1)
	return first, last
}

// DaysIn returns the number of days in the month containing t.
func DaysIn(t time.Time) int {
	_, last := MonthRange(t)
	return last.Day()
}

// MonthKeys enumerates the date keys of every day in the month containing t,
// in calendar order.
func MonthKeys(t time.Time) []Key {
	first, last := MonthRange(t)
	keys := make([]Key, 0, last.Day())
	for d := 1; d <= last.Day(); d++ {
		keys = append(keys, FromTime(first.AddDate(0, 0, d-1)))
	}
	return keys
}
