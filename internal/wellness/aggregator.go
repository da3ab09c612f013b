package wellness

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/models"
)

const (
	// DaysPerWeek is the window length for weekly aggregation
	DaysPerWeek = 7
	// MaxRecommendations caps how many recommendations a report carries
	MaxRecommendations = 3

	// LowCompletionThreshold is the completion rate below which more
	// activity is recommended
	LowCompletionThreshold = 50
	// LowCheckInThreshold is the check-in rate below which a daily
	// check-in habit is recommended
	LowCheckInThreshold = 50
)

// AggregateWeek folds up to seven days of entries, their parallel
// assessments, and activity completions into a WeeklyReport. Entries must
// be supplied sorted ascending by date; assessments[i] belongs to
// entries[i] and may be nil when classification has not run yet.
// Aggregation never fails: missing data degrades to the documented
// sentinels on ProgressMetrics.
func AggregateWeek(userID uuid.UUID, weekStart time.Time, entries []*models.DailyEntry, assessments []*models.StressAssessment, completions []models.ActivityCompletion) *models.WeeklyReport {
	weekStart = weekStart.UTC().Truncate(24 * time.Hour)
	weekEnd := weekStart.AddDate(0, 0, DaysPerWeek-1)

	metrics := models.ProgressMetrics{
		CheckInRate:            ratePercent(len(entries)),
		ActivityCompletionRate: ratePercent(distinctCompletionDays(weekStart, weekEnd, completions)),
	}
	metrics.AverageEmotionalState, metrics.HasMoodData = averageEmotionalState(entries)
	metrics.RecoveryDays, metrics.RecoveryObserved = recoveryTime(entries, assessments)
	metrics.CheckInStreak = checkInStreak(entries)

	report := &models.WeeklyReport{
		UserID:          userID,
		WeekStart:       weekStart,
		WeekEnd:         weekEnd,
		Metrics:         metrics,
		Recommendations: recommend(metrics, assessments),
		GeneratedAt:     time.Now().UTC(),
	}
	report.EmotionalTrends = emotionalTrends(metrics, len(entries))
	report.StressPatterns = stressPatterns(assessments)
	report.ActivityEffectiveness = activityEffectiveness(weekStart, weekEnd, metrics, completions)
	return report
}

// ratePercent converts a day count within the week to a rounded 0-100 rate
func ratePercent(days int) int {
	if days < 0 {
		days = 0
	}
	if days > DaysPerWeek {
		days = DaysPerWeek
	}
	return int(math.Round(float64(days) / DaysPerWeek * 100))
}

// distinctCompletionDays counts the days inside the window with at least
// one completion.
func distinctCompletionDays(weekStart, weekEnd time.Time, completions []models.ActivityCompletion) int {
	days := make(map[string]bool)
	for _, completion := range completions {
		day := completion.Date.UTC().Truncate(24 * time.Hour)
		if day.Before(weekStart) || day.After(weekEnd) {
			continue
		}
		days[day.Format("2006-01-02")] = true
	}
	return len(days)
}

// averageEmotionalState maps each present entry onto a single 1-5 scale
// and averages. Basic states project 1/3/5 so both shapes share a scale;
// enhanced entries use the reported primary intensity (3 when unset).
// Returns ok=false when no entries are present.
func averageEmotionalState(entries []*models.DailyEntry) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	total := 0.0
	counted := 0
	for _, entry := range entries {
		switch {
		case entry.IsBasic():
			switch entry.Basic.EmotionalState {
			case models.StateNegative:
				total += 1
			case models.StateNeutral:
				total += 3
			case models.StatePositive:
				total += 5
			}
			counted++
		case entry.IsEnhanced():
			if entry.Enhanced.PrimaryIntensity.Valid() {
				total += float64(entry.Enhanced.PrimaryIntensity)
			} else {
				total += 3
			}
			counted++
		}
	}
	if counted == 0 {
		return 0, false
	}
	return math.Round(total/float64(counted)*10) / 10, true
}

// recoveryTime measures whole days from the most recent high-stress entry
// to the first subsequent calm entry. ok=false when no qualifying pair
// exists inside the window.
func recoveryTime(entries []*models.DailyEntry, assessments []*models.StressAssessment) (int, bool) {
	spike := -1
	for i := len(entries) - 1; i >= 0; i-- {
		if i < len(assessments) && assessments[i] != nil && assessments[i].HighStress() {
			spike = i
			break
		}
	}
	if spike == -1 {
		return 0, false
	}
	for i := spike + 1; i < len(entries); i++ {
		if i < len(assessments) && assessments[i] != nil && assessments[i].Calm() {
			days := int(entries[i].Date.Sub(entries[spike].Date).Hours() / 24)
			return days, true
		}
	}
	return 0, false
}

// checkInStreak counts consecutive calendar days ending at the last entry
func checkInStreak(entries []*models.DailyEntry) int {
	if len(entries) == 0 {
		return 0
	}
	streak := 1
	for i := len(entries) - 1; i > 0; i-- {
		gap := entries[i].Date.Sub(entries[i-1].Date).Hours() / 24
		if gap != 1 {
			break
		}
		streak++
	}
	return streak
}

// emotionalTrends renders the mood narrative, embedding the key numbers
func emotionalTrends(metrics models.ProgressMetrics, entryCount int) string {
	if !metrics.HasMoodData {
		return "No check-ins were recorded this week, so no emotional trend is available."
	}
	trend := fmt.Sprintf("Average emotional state was %.1f out of 5 across %d check-ins (%d%% check-in rate).",
		metrics.AverageEmotionalState, entryCount, metrics.CheckInRate)
	if metrics.CheckInStreak > 1 {
		trend += fmt.Sprintf(" Current check-in streak: %d days.", metrics.CheckInStreak)
	}
	return trend
}

// stressPatterns renders the stress narrative from the week's assessments
func stressPatterns(assessments []*models.StressAssessment) string {
	assessed := 0
	highStress := 0
	triggerCounts := make(map[string]int)
	for _, assessment := range assessments {
		if assessment == nil {
			continue
		}
		assessed++
		if assessment.HighStress() {
			highStress++
		}
		for _, trigger := range assessment.Triggers {
			triggerCounts[trigger]++
		}
	}
	if assessed == 0 {
		return "No stress assessments were available for this week."
	}
	narrative := fmt.Sprintf("%d of %d assessed days showed high stress.", highStress, assessed)
	if top := topTriggers(triggerCounts, 2); len(top) > 0 {
		narrative += fmt.Sprintf(" Most frequent triggers: %s.", strings.Join(top, ", "))
	}
	return narrative
}

// activityEffectiveness renders the activity narrative
func activityEffectiveness(weekStart, weekEnd time.Time, metrics models.ProgressMetrics, completions []models.ActivityCompletion) string {
	inWindow := 0
	ratingTotal := 0
	rated := 0
	for _, completion := range completions {
		day := completion.Date.UTC().Truncate(24 * time.Hour)
		if day.Before(weekStart) || day.After(weekEnd) {
			continue
		}
		inWindow++
		if completion.Rating >= 1 && completion.Rating <= 5 {
			ratingTotal += completion.Rating
			rated++
		}
	}
	if inWindow == 0 {
		return fmt.Sprintf("No activities were completed this week (%d%% completion rate).", metrics.ActivityCompletionRate)
	}
	narrative := fmt.Sprintf("%d activities completed (%d%% of days).", inWindow, metrics.ActivityCompletionRate)
	if rated > 0 {
		narrative += fmt.Sprintf(" Average activity rating: %.1f out of 5.", float64(ratingTotal)/float64(rated))
	}
	return narrative
}

// recommend applies the fixed priority table and caps the result.
// Priority order: low activity completion, dominant work/finance
// triggers, low check-in rate, repeated high stress, then maintenance.
func recommend(metrics models.ProgressMetrics, assessments []*models.StressAssessment) []models.Recommendation {
	var recommendations []models.Recommendation

	if metrics.ActivityCompletionRate < LowCompletionThreshold {
		recommendations = append(recommendations, models.Recommendation{
			Title:   "Increase activity frequency",
			Content: fmt.Sprintf("Activities were completed on %d%% of days this week. Scheduling one short activity per day tends to improve mood stability.", metrics.ActivityCompletionRate),
		})
	}

	if workFinanceDominant(assessments) {
		recommendations = append(recommendations, models.Recommendation{
			Title:   "Set workload boundaries",
			Content: "Work or money concerns triggered stress on most assessed days. Consider defining a hard stop for the workday and deferring financial planning to a fixed weekly slot.",
		})
	}

	if metrics.CheckInRate < LowCheckInThreshold {
		recommendations = append(recommendations, models.Recommendation{
			Title:   "Build a daily check-in habit",
			Content: fmt.Sprintf("Only %d%% of days had a check-in. A consistent daily entry makes weekly insights far more reliable.", metrics.CheckInRate),
		})
	}

	if highStressDays(assessments) >= 2 {
		recommendations = append(recommendations, models.Recommendation{
			Title:   "Plan recovery time",
			Content: "Multiple days this week registered high stress. Blocking deliberate recovery time before the next busy stretch can shorten how long stress lingers.",
		})
	}

	recommendations = append(recommendations, models.Recommendation{
		Title:   "Keep the routine going",
		Content: "Your current check-in and activity routine is working. Keeping it steady is the most reliable path to long-term improvement.",
	})

	if len(recommendations) > MaxRecommendations {
		recommendations = recommendations[:MaxRecommendations]
	}
	return recommendations
}

// workFinanceDominant reports whether work/finance triggers appear on more
// than half of the assessed days.
func workFinanceDominant(assessments []*models.StressAssessment) bool {
	assessed := 0
	hits := 0
	for _, assessment := range assessments {
		if assessment == nil {
			continue
		}
		assessed++
		for _, trigger := range assessment.Triggers {
			if trigger == string(models.ContextWork) || trigger == string(models.ContextFinances) {
				hits++
				break
			}
		}
	}
	return assessed > 0 && hits*2 > assessed
}

func highStressDays(assessments []*models.StressAssessment) int {
	count := 0
	for _, assessment := range assessments {
		if assessment != nil && assessment.HighStress() {
			count++
		}
	}
	return count
}

// topTriggers returns the most frequent triggers, ties broken
// alphabetically for deterministic output.
func topTriggers(counts map[string]int, limit int) []string {
	triggers := make([]string, 0, len(counts))
	for trigger := range counts {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool {
		if counts[triggers[i]] != counts[triggers[j]] {
			return counts[triggers[i]] > counts[triggers[j]]
		}
		return triggers[i] < triggers[j]
	})
	if len(triggers) > limit {
		triggers = triggers[:limit]
	}
	return triggers
}
