package model

import "time"

// Task represents a single item on a calendar day.
type Task struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	CategoryID  string     `json:"categoryId"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Order       int        `json:"order"`
}
