package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. Timezone is an IANA zone name
// used by the nudge scheduler for quiet-hour checks; empty means UTC.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	ProviderID    *string   `json:"provider_id,omitempty"`
	Name          *string   `json:"name,omitempty"`
	Timezone      string    `json:"timezone,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
