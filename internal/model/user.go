package model

import "time"

// DefaultAppTitle is used until the user edits the title.
const DefaultAppTitle = "ALL IS WELL 🌱"

// UserProfile is the root document of a user, holding identity metadata and
// the editable app title.
type UserProfile struct {
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	AppTitle     string    `json:"appTitle,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Salt         string    `json:"salt,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
