// Package view builds the render models consumed by the UI shell: the month
// grid and the selected day's task list. No rendering technology is assumed.
package view

import (
	"time"

	"allswell/internal/datekey"
	"allswell/internal/model"
)

// DayCell is one cell of the month grid. Blank cells pad the first week so
// day 1 lands on its weekday column.
type DayCell struct {
	Blank          bool        `json:"blank,omitempty"`
	Day            int         `json:"day,omitempty"`
	DateKey        datekey.Key `json:"dateKey,omitempty"`
	Today          bool        `json:"today,omitempty"`
	Selected       bool        `json:"selected,omitempty"`
	TaskCount      int         `json:"taskCount"`
	CompletedCount int         `json:"completedCount"`
}

// MonthGrid is the full calendar render model for one viewed month.
type MonthGrid struct {
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	WeekdayNames  [7]string `json:"weekdayNames"`
	LeadingBlanks int       `json:"leadingBlanks"`
	Cells         []DayCell `json:"cells"`
}

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BuildMonthGrid lays out the month containing viewing: leading blanks up to
// the weekday of day 1 (0=Sunday), then one cell per day. Exactly one cell is
// marked today when the viewed month contains the current date, and exactly
// one is marked selected when the selection falls in the viewed month.
// Counters come from meta; pass a zero mapping to render immediately and
// backfill once aggregation resolves.
func BuildMonthGrid(viewing, selected, today time.Time, meta map[datekey.Key]model.DayMetadata) MonthGrid {
	first, last := datekey.MonthRange(viewing)
	grid := MonthGrid{
		Year:          first.Year(),
		Month:         int(first.Month()),
		WeekdayNames:  weekdayNames,
		LeadingBlanks: int(first.Weekday()),
	}

	selectedKey := datekey.FromTime(selected)
	todayKey := datekey.FromTime(today)

	for i := 0; i < grid.LeadingBlanks; i++ {
		grid.Cells = append(grid.Cells, DayCell{Blank: true})
	}

	for day := 1; day <= last.Day(); day++ {
		key := datekey.FromTime(first.AddDate(0, 0, day-1))
		cell := DayCell{
			Day:      day,
			DateKey:  key,
			Today:    key == todayKey,
			Selected: key == selectedKey,
		}
		if m, ok := meta[key]; ok {
			cell.TaskCount = m.TaskCount
			cell.CompletedCount = m.CompletedCount
		}
		grid.Cells = append(grid.Cells, cell)
	}
	return grid
}
