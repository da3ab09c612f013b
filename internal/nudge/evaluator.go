package nudge

import (
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/models"
)

// Evaluate applies every rule to a user's latest assessment and inserts
// the nudges that fire into the store. Rules are skipped inside their
// quiet hours and once their per-day cap is reached. Returns the nudges
// that fired.
func Evaluate(store *Store, rules []models.NudgeRule, userID uuid.UUID, assessment *models.StressAssessment, now time.Time) []models.Nudge {
	if store == nil || assessment == nil {
		return nil
	}

	var fired []models.Nudge
	for _, rule := range rules {
		if assessment.StressLevel < rule.MinStressLevel {
			continue
		}
		if rule.InQuietHours(now.Hour()) {
			continue
		}
		if store.CountForRule(userID, rule.Name) >= rule.MaxPerDay {
			continue
		}

		ttl := DefaultTTL
		if rule.TTLMinutes > 0 {
			ttl = time.Duration(rule.TTLMinutes) * time.Minute
		}
		n := models.Nudge{
			ID:        uuid.New(),
			UserID:    userID,
			Rule:      rule.Name,
			Message:   rule.Message,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		store.Put(n)
		fired = append(fired, n)
	}
	return fired
}
