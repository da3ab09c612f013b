package ai

import (
	"context"

	"github.com/mindtide/mindtide/internal/models"
	"go.uber.org/zap"
)

// AffirmationGenerator produces one short supportive sentence for an
// assessment. OpenAIAnalyzer is the production implementation.
type AffirmationGenerator interface {
	GenerateAffirmation(ctx context.Context, assessment *models.StressAssessment) (string, error)
}

// defaultAffirmations are served when generation fails or no generator is
// configured, keyed by how stressed the day was.
var defaultAffirmations = map[string]string{
	"high": "Hard days pass. You have gotten through every one so far, and this one is no different.",
	"mid":  "You are handling more than you give yourself credit for. One steady step at a time.",
	"low":  "You are doing well. Taking a moment to check in with yourself is worth celebrating.",
}

// AffirmationOrDefault returns a generated affirmation, falling back to a
// stock one matched to the stress level. It never fails.
func AffirmationOrDefault(ctx context.Context, generator AffirmationGenerator, assessment *models.StressAssessment, logger *zap.Logger) string {
	if generator != nil && assessment != nil {
		affirmation, err := generator.GenerateAffirmation(ctx, assessment)
		if err == nil && affirmation != "" {
			return affirmation
		}
		if logger != nil {
			logger.Debug("affirmation_fallback", zap.Error(err))
		}
	}
	return DefaultAffirmation(assessment)
}

// DefaultAffirmation picks the stock affirmation for an assessment
func DefaultAffirmation(assessment *models.StressAssessment) string {
	switch {
	case assessment != nil && assessment.HighStress():
		return defaultAffirmations["high"]
	case assessment != nil && assessment.StressLevel == 3:
		return defaultAffirmations["mid"]
	default:
		return defaultAffirmations["low"]
	}
}
