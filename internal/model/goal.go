package model

import "time"

// MonthlyGoal is a free-text goal for one month, keyed by YYYY-MM.
type MonthlyGoal struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Goal      string    `json:"goal"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
