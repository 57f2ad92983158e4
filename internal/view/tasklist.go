package view

import (
	"allswell/internal/datekey"
	"allswell/internal/model"
)

// FallbackColor is the neutral accent for tasks whose category no longer
// resolves.
const FallbackColor = "#636E72"

// EmptyMessage is rendered in place of an empty list.
const EmptyMessage = "No tasks scheduled."

// CategoryBadge decorates a task row with its category's identity.
type CategoryBadge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// TaskRow is one task of the selected day's list, in stored creation order.
type TaskRow struct {
	Task        model.Task     `json:"task"`
	AccentColor string         `json:"accentColor"`
	Badge       *CategoryBadge `json:"badge,omitempty"`
}

// TaskList is the render model of the selected date's tasks.
type TaskList struct {
	DateKey      datekey.Key `json:"dateKey"`
	Title        string      `json:"title"`
	Empty        bool        `json:"empty"`
	EmptyMessage string      `json:"emptyMessage,omitempty"`
	Rows         []TaskRow   `json:"rows,omitempty"`
}

// BuildTaskList renders the cached snapshot of a date. A task with an
// unresolvable category keeps a neutral accent and no badge instead of
// failing.
func BuildTaskList(key datekey.Key, tasks []model.Task, categories []model.Category) TaskList {
	list := TaskList{DateKey: key}
	if day, err := datekey.Parse(key); err == nil {
		list.Title = day.Format("Jan 2 (Mon)")
	}

	if len(tasks) == 0 {
		list.Empty = true
		list.EmptyMessage = EmptyMessage
		return list
	}

	byID := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}

	for _, task := range tasks {
		row := TaskRow{Task: task, AccentColor: FallbackColor}
		if cat, ok := byID[task.CategoryID]; ok {
			row.AccentColor = cat.Color
			row.Badge = &CategoryBadge{Label: cat.Label(), Color: cat.Color}
		}
		list.Rows = append(list.Rows, row)
	}
	return list
}
