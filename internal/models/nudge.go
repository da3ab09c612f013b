package models

import (
	"time"

	"github.com/google/uuid"
)

// Nudge is a gentle reminder emitted by the scheduler when a user's
// recent assessments warrant one. Nudges live in an in-memory store with
// a TTL; they are never persisted.
type Nudge struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Rule      string    `json:"rule"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NudgeRule is one configured trigger for emitting nudges, loaded from
// the YAML rules file.
type NudgeRule struct {
	Name           string `yaml:"name" json:"name"`
	MinStressLevel int    `yaml:"min_stress_level" json:"min_stress_level"`
	Message        string `yaml:"message" json:"message"`
	MaxPerDay      int    `yaml:"max_per_day" json:"max_per_day"`
	QuietStartHour int    `yaml:"quiet_start_hour" json:"quiet_start_hour"` // inclusive, 0-23
	QuietEndHour   int    `yaml:"quiet_end_hour" json:"quiet_end_hour"`     // exclusive, 0-23
	TTLMinutes     int    `yaml:"ttl_minutes" json:"ttl_minutes"`
}

// InQuietHours reports whether the given hour falls inside the rule's
// quiet window. A window may wrap past midnight (e.g. 22 to 8).
func (r *NudgeRule) InQuietHours(hour int) bool {
	if r.QuietStartHour == r.QuietEndHour {
		return false
	}
	if r.QuietStartHour < r.QuietEndHour {
		return hour >= r.QuietStartHour && hour < r.QuietEndHour
	}
	return hour >= r.QuietStartHour || hour < r.QuietEndHour
}
