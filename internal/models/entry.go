package models

import (
	"time"

	"github.com/google/uuid"
)

// EmotionalState is the coarse mood on a basic check-in
type EmotionalState string

const (
	StatePositive EmotionalState = "positive"
	StateNeutral  EmotionalState = "neutral"
	StateNegative EmotionalState = "negative"
)

// EntryKind discriminates the two check-in shapes
type EntryKind string

const (
	EntryKindBasic    EntryKind = "basic"
	EntryKindEnhanced EntryKind = "enhanced"
)

// BasicCheckIn is the minimal check-in shape: one coarse mood plus notes
type BasicCheckIn struct {
	EmotionalState EmotionalState `json:"emotional_state"`
}

// SecondaryEmotion pairs an additional emotion with its intensity
type SecondaryEmotion struct {
	Emotion   EmotionCategory `json:"emotion"`
	Intensity IntensityLevel  `json:"intensity"`
}

// EnhancedCheckIn is the detailed check-in shape
type EnhancedCheckIn struct {
	PrimaryEmotion    EmotionCategory    `json:"primary_emotion"`
	PrimaryIntensity  IntensityLevel     `json:"primary_intensity,omitempty"`
	SecondaryEmotions []SecondaryEmotion `json:"secondary_emotions,omitempty"`
	EnergyLevel       int                `json:"energy_level,omitempty"` // 1-5, 0 = not reported
	StressLevel       int                `json:"stress_level,omitempty"` // 1-5 self-report, 0 = not reported
	ContextTags       []ContextTag       `json:"context_tags,omitempty"`
}

// DailyEntry is one user's check-in for one calendar day. Exactly one of
// Basic or Enhanced is populated, matching Kind. Entries may be amended
// until the next-day rollover and are immutable afterwards.
type DailyEntry struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Date      time.Time        `json:"date"` // calendar day, UTC midnight
	Kind      EntryKind        `json:"kind"`
	Basic     *BasicCheckIn    `json:"basic,omitempty"`
	Enhanced  *EnhancedCheckIn `json:"enhanced,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// IsEnhanced reports whether the entry carries the detailed shape
func (e *DailyEntry) IsEnhanced() bool {
	return e.Kind == EntryKindEnhanced && e.Enhanced != nil
}

// IsBasic reports whether the entry carries the minimal shape
func (e *DailyEntry) IsBasic() bool {
	return e.Kind == EntryKindBasic && e.Basic != nil
}

// Amendable reports whether the entry may still be amended at the given
// time. Entries lock at the next calendar-day rollover (UTC).
func (e *DailyEntry) Amendable(now time.Time) bool {
	rollover := e.Date.AddDate(0, 0, 1)
	return now.UTC().Before(rollover)
}
