package models

import (
	"time"

	"github.com/google/uuid"
)

// Confidence expresses how certain the classifier is about an assessment
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// AssessmentSource mirrors which check-in shape was analyzed
type AssessmentSource string

const (
	SourceBasic    AssessmentSource = "basic"
	SourceEnhanced AssessmentSource = "enhanced"
)

// StressAssessment is the classifier's derived evaluation of one daily
// entry. The classifier fills the analytic fields; UserID, EntryDate and
// CreatedAt are stamped by whoever persists the assessment.
type StressAssessment struct {
	ID          uuid.UUID        `json:"id,omitempty"`
	UserID      uuid.UUID        `json:"user_id,omitempty"`
	EntryDate   time.Time        `json:"entry_date,omitempty"`
	StressLevel int              `json:"stress_level"` // 0-5 derived, 0 = no stress detected
	StressType  StressType       `json:"stress_type,omitempty"`
	Confidence  Confidence       `json:"confidence"`
	Triggers    []string         `json:"triggers,omitempty"`
	Patterns    []string         `json:"patterns,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Source      AssessmentSource `json:"source"`
	CreatedAt   time.Time        `json:"created_at,omitempty"`
}

// HighStress reports whether the derived level counts as a high-stress day
func (a *StressAssessment) HighStress() bool {
	return a.StressLevel >= 4
}

// Calm reports whether the derived level counts as a calm day
func (a *StressAssessment) Calm() bool {
	return a.StressLevel <= 2
}
