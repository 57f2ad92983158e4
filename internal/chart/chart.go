// Package chart aggregates completed-task counts per category for a month
// and lays out a proportional pie chart with percentage labels and a legend.
package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"allswell/internal/datekey"
	"allswell/internal/model"
)

// LabelThreshold is the minimum slice angle (radians) at which a percentage
// label is still readable.
const LabelThreshold = 0.3

// TaskSource yields the cached task snapshot of a date. Days that were never
// cached yield nothing; callers that need the full month load it first.
type TaskSource interface {
	Get(key datekey.Key) []model.Task
}

// Entry is one category's share of the month's completed tasks.
type Entry struct {
	Category   model.Category `json:"category"`
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
}

// Distribution counts completed tasks per category across all days of the
// month containing month that are present in source. Zero-count categories
// are excluded; entries are sorted by count descending, ties keeping the
// category order.
func Distribution(source TaskSource, categories []model.Category, month time.Time) []Entry {
	counts := make(map[string]int, len(categories))
	for _, cat := range categories {
		counts[cat.ID] = 0
	}

	for _, key := range datekey.MonthKeys(month) {
		for _, task := range source.Get(key) {
			if !task.Completed {
				continue
			}
			if _, known := counts[task.CategoryID]; !known {
				continue // category no longer exists
			}
			counts[task.CategoryID]++
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	entries := make([]Entry, 0, len(categories))
	for _, cat := range categories {
		n := counts[cat.ID]
		if n == 0 {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		entries = append(entries, Entry{Category: cat, Count: n, Percentage: pct})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// SliceLabel is a percentage label anchored inside a slice.
type SliceLabel struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Slice is one category's wedge of the pie.
type Slice struct {
	Entry
	StartAngle float64     `json:"startAngle"`
	EndAngle   float64     `json:"endAngle"`
	Label      *SliceLabel `json:"label,omitempty"`
}

// LegendEntry is one row of the chart legend.
type LegendEntry struct {
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Pie is the full render model of the monthly chart.
type Pie struct {
	Size    float64       `json:"size"`
	CenterX float64       `json:"centerX"`
	CenterY float64       `json:"centerY"`
	Radius  float64       `json:"radius"`
	Total   int           `json:"total"`
	Slices  []Slice       `json:"slices"`
	Legend  []LegendEntry `json:"legend"`
	Empty   bool          `json:"empty"`
}

// EmptyMessage is shown in place of the chart when nothing was completed.
const EmptyMessage = "No completed tasks yet."

// Layout places the entries around the circle, starting at twelve o'clock and
// proceeding clockwise. Labels appear only on slices wide enough to read.
func Layout(entries []Entry, size float64) Pie {
	pie := Pie{
		Size:    size,
		CenterX: size / 2,
		CenterY: size / 2,
		Radius:  size/2 - 20,
	}
	for _, e := range entries {
		pie.Total += e.Count
	}
	if pie.Total == 0 {
		pie.Empty = true
		return pie
	}

	start := -math.Pi / 2
	for _, e := range entries {
		angle := float64(e.Count) / float64(pie.Total) * 2 * math.Pi
		slice := Slice{Entry: e, StartAngle: start, EndAngle: start + angle}

		if angle > LabelThreshold {
			mid := start + angle/2
			slice.Label = &SliceLabel{
				Text: fmt.Sprintf("%.0f%%", e.Percentage),
				X:    pie.CenterX + math.Cos(mid)*pie.Radius*0.6,
				Y:    pie.CenterY + math.Sin(mid)*pie.Radius*0.6,
			}
		}

		pie.Slices = append(pie.Slices, slice)
		pie.Legend = append(pie.Legend, LegendEntry{
			Label:      e.Category.Label(),
			Color:      e.Category.Color,
			Count:      e.Count,
			Percentage: e.Percentage,
		})
		start = slice.EndAngle
	}
	return pie
}
