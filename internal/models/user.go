package models

import "time"

// User is the slice of the platform's user record the chat subsystem
// needs for display-name enrichment and presence.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
