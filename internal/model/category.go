package model

// Category groups tasks by area (work, health, study, etc.).
// Name is unique per user; Order drives display and legend ordering.
type Category struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
	Emoji string `json:"emoji,omitempty"`
}

// Label returns the display name with the emoji prefix when one is set.
func (c Category) Label() string {
	if c.Emoji != "" {
		return c.Emoji + " " + c.Name
	}
	return c.Name
}
