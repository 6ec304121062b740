package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultContactSource marks contacts created through the API.
const DefaultContactSource = "extension"

// Contact is a person in the user's network
type Contact struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Name              string    `json:"name"`
	Title             *string   `json:"title"`
	Company           *string   `json:"company"`
	LinkedInURL       *string   `json:"linkedin_url"`
	Email             *string   `json:"email,omitempty"`
	Phone             *string   `json:"phone,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
	Source            *string   `json:"source,omitempty"`
	MutualConnections []string  `json:"mutual_connections"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ContactCreateInput contains fields for creating a contact
type ContactCreateInput struct {
	UserID            uuid.UUID
	Name              string
	Title             string
	Company           string
	LinkedInURL       string
	Email             string
	Phone             string
	Notes             string
	Source            string
	MutualConnections []string
}

// ConnectionsUpdate computes the new mutual connection list from the stored
// one. It reports false when nothing changed and no write is needed.
type ConnectionsUpdate func(existing []string) (updated []string, changed bool)

// nullIfEmpty maps "" to NULL
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
