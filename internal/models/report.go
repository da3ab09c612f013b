package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityCompletion records one completed wellness activity
type ActivityCompletion struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ActivityID string    `json:"activity_id"`
	Date       time.Time `json:"date"` // calendar day, UTC midnight
	Rating     int       `json:"rating,omitempty"` // 1-5, 0 = not rated
	CreatedAt  time.Time `json:"created_at"`
}

// ProgressMetrics are the numeric series a weekly report is built from.
// Metrics that cannot be computed degrade to explicit sentinels instead
// of errors: HasMoodData=false means "no data", RecoveryObserved=false
// means no qualifying high-stress-to-calm pair fell inside the window.
type ProgressMetrics struct {
	CheckInRate            int     `json:"check_in_rate"`             // 0-100
	ActivityCompletionRate int     `json:"activity_completion_rate"`  // 0-100
	AverageEmotionalState  float64 `json:"average_emotional_state"`   // 1-5 scale
	HasMoodData            bool    `json:"has_mood_data"`
	RecoveryDays           int     `json:"recovery_days"`
	RecoveryObserved       bool    `json:"recovery_observed"`
	CheckInStreak          int     `json:"check_in_streak"` // consecutive days ending at the last check-in
}

// Recommendation is one actionable item on a weekly report
type Recommendation struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// WeeklyReport aggregates a 7-day window of entries, assessments and
// activity completions into metrics and narrative summaries.
type WeeklyReport struct {
	ID                    uuid.UUID        `json:"id,omitempty"`
	UserID                uuid.UUID        `json:"user_id,omitempty"`
	WeekStart             time.Time        `json:"week_start"`
	WeekEnd               time.Time        `json:"week_end"`
	Metrics               ProgressMetrics  `json:"metrics"`
	EmotionalTrends       string           `json:"emotional_trends"`
	StressPatterns        string           `json:"stress_patterns"`
	ActivityEffectiveness string           `json:"activity_effectiveness"`
	Recommendations       []Recommendation `json:"recommendations"`
	GeneratedAt           time.Time        `json:"generated_at"`
}
