package model

// DayMetadata is the denormalized per-day counter document backing the month
// grid. Counters are maintained by increment/decrement beside task writes and
// periodically reconciled against the true task counts.
type DayMetadata struct {
	TaskCount      int `json:"taskCount"`
	CompletedCount int `json:"completedCount"`
}
