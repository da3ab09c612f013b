package wellness

import (
	"context"
	"strings"

	"github.com/mindtide/mindtide/internal/models"
	"go.uber.org/zap"
)

const (
	// MinStressLevel is the floor of the derived stress scale (no stress)
	MinStressLevel = 0
	// MaxStressLevel is the ceiling of the derived stress scale
	MaxStressLevel = 5

	// DefaultStressfulIntensity is assumed when a stressful primary
	// emotion is reported without an intensity
	DefaultStressfulIntensity = 4
	// DefaultModerateLevel is assumed when a moderate primary emotion is
	// reported without an intensity
	DefaultModerateLevel = 2

	// ChronicWindowSize caps how many recent entries must qualify as
	// stressed before the episode is considered chronic
	ChronicWindowSize = 3
)

// stressfulEmotions drive the stress level directly from intensity
var stressfulEmotions = map[models.EmotionCategory]bool{
	models.EmotionAnxious:     true,
	models.EmotionStressed:    true,
	models.EmotionOverwhelmed: true,
	models.EmotionFrustrated:  true,
	models.EmotionAngry:       true,
}

// moderateEmotions contribute stress at a reduced, capped level
var moderateEmotions = map[models.EmotionCategory]bool{
	models.EmotionSad:          true,
	models.EmotionDisappointed: true,
	models.EmotionTired:        true,
}

// chronicEmotions mark a prior entry as stressed for chronic detection
var chronicEmotions = map[models.EmotionCategory]bool{
	models.EmotionAnxious:     true,
	models.EmotionStressed:    true,
	models.EmotionOverwhelmed: true,
}

// forcingTags are context tags that alone push the level to at least 3
var forcingTags = map[models.ContextTag]bool{
	models.ContextWork:     true,
	models.ContextFinances: true,
}

var anticipatoryMarkers = []string{"worried about", "anxious about", "upcoming", "future"}
var reactiveMarkers = []string{"because of", "reacting to", "happened"}

// Suggestion texts appended by stress-level tier
const (
	SuggestionTakeBreaks  = "Consider taking breaks throughout the day"
	SuggestionBreathing   = "Try a breathing exercise when feeling overwhelmed"
	SuggestionMindfulness = "Regular mindfulness practice may help manage stress"
)

// Classifier derives a StressAssessment from one daily entry plus a short
// window of prior entries. Classification is deterministic for fixed
// inputs; the only nondeterminism is the optional text analysis, which is
// skipped silently when it fails.
type Classifier struct {
	analyzer TextAnalyzer
	logger   *zap.Logger
}

// NewClassifier creates a classifier. Both arguments may be nil: without
// an analyzer the free-text step is skipped, without a logger failures of
// the text call are dropped silently.
func NewClassifier(analyzer TextAnalyzer, logger *zap.Logger) *Classifier {
	return &Classifier{analyzer: analyzer, logger: logger}
}

// Classify evaluates one entry against its recent history. recent must be
// ordered most-recent-first; nil is treated as no history. Classify never
// fails: an entry with neither shape populated yields the minimal
// "insufficient data" assessment.
func (c *Classifier) Classify(ctx context.Context, entry *models.DailyEntry, recent []*models.DailyEntry) *models.StressAssessment {
	assessment := &models.StressAssessment{
		StressLevel: MinStressLevel,
		Confidence:  models.ConfidenceLow,
		Source:      models.SourceBasic,
	}
	if entry == nil {
		return assessment
	}
	if entry.IsEnhanced() {
		assessment.Source = models.SourceEnhanced
	}

	triggers := newStringSet()

	switch {
	case entry.IsEnhanced():
		c.scoreEnhanced(entry.Enhanced, assessment)
	case entry.IsBasic():
		c.scoreBasic(entry.Basic, assessment)
	default:
		// Neither shape populated: insufficient data, not an error.
		return assessment
	}

	if entry.IsEnhanced() {
		// Context tags become triggers; work and finances force a floor.
		for _, tag := range entry.Enhanced.ContextTags {
			triggers.add(string(tag))
			if forcingTags[tag] {
				assessment.StressLevel = clampLevel(max(assessment.StressLevel, 3))
			}
		}
	}

	c.augmentFromNotes(ctx, entry.Notes, assessment, triggers)

	assessment.StressType = inferStressType(entry, recent, assessment.StressLevel)
	assessment.Triggers = triggers.values()
	assessment.Patterns = describePatterns(assessment.StressType)
	assessment.Suggestions = buildSuggestions(assessment.StressLevel, assessment.StressType)

	return assessment
}

// scoreEnhanced applies the baseline, secondary-emotion, and energy rules
// for the detailed shape.
func (c *Classifier) scoreEnhanced(in *models.EnhancedCheckIn, assessment *models.StressAssessment) {
	switch {
	case stressfulEmotions[in.PrimaryEmotion]:
		level := DefaultStressfulIntensity
		if in.PrimaryIntensity.Valid() {
			level = int(in.PrimaryIntensity)
		}
		assessment.StressLevel = clampLevel(level)
		assessment.Confidence = models.ConfidenceHigh
	case moderateEmotions[in.PrimaryEmotion]:
		level := DefaultModerateLevel
		if in.PrimaryIntensity.Valid() {
			level = int(in.PrimaryIntensity) - 1
			if level > 3 {
				level = 3
			}
		}
		assessment.StressLevel = clampLevel(level)
		assessment.Confidence = models.ConfidenceMedium
	default:
		assessment.StressLevel = MinStressLevel
		assessment.Confidence = models.ConfidenceLow
	}

	// A stressful secondary emotion bumps a low baseline by one.
	if assessment.StressLevel < 3 {
		for _, secondary := range in.SecondaryEmotions {
			if stressfulEmotions[secondary.Emotion] {
				assessment.StressLevel = clampLevel(assessment.StressLevel + 1)
				break
			}
		}
	}

	// Depleted energy keeps the floor at 2.
	if in.EnergyLevel >= 1 && in.EnergyLevel <= 2 {
		assessment.StressLevel = clampLevel(max(assessment.StressLevel, 2))
	}
}

// scoreBasic applies the baseline rule for the minimal shape.
func (c *Classifier) scoreBasic(in *models.BasicCheckIn, assessment *models.StressAssessment) {
	switch in.EmotionalState {
	case models.StateNegative:
		assessment.StressLevel = 4
		assessment.Confidence = models.ConfidenceMedium
	case models.StateNeutral:
		assessment.StressLevel = 2
		assessment.Confidence = models.ConfidenceLow
	default:
		assessment.StressLevel = MinStressLevel
		assessment.Confidence = models.ConfidenceLow
	}
	assessment.StressLevel = clampLevel(assessment.StressLevel)
}

// augmentFromNotes runs the optional text analysis. Any failure is logged
// and swallowed; the assessment is only ever strengthened, never aborted.
func (c *Classifier) augmentFromNotes(ctx context.Context, notes string, assessment *models.StressAssessment, triggers *stringSet) {
	if notes == "" || c.analyzer == nil {
		return
	}
	insight, err := c.analyzer.AnalyzeNotes(ctx, notes)
	if err != nil || insight == nil {
		if c.logger != nil {
			c.logger.Debug("text_analysis_unavailable", zap.Error(err))
		}
		return
	}
	if insight.Sentiment == SentimentNegative {
		assessment.StressLevel = clampLevel(max(assessment.StressLevel, 3))
		assessment.Confidence = models.ConfidenceHigh
	}
	for _, topic := range insight.Topics {
		if topic != "" {
			triggers.add(topic)
		}
	}
}

// inferStressType classifies the episode's cause. Precedence is fixed:
// chronic, acute spike, anticipatory, reactive, then acute fallback.
func inferStressType(entry *models.DailyEntry, recent []*models.DailyEntry, level int) models.StressType {
	if len(recent) == 0 {
		if level >= 3 {
			return models.StressTypeAcute
		}
		return models.StressTypeNone
	}

	threshold := ChronicWindowSize
	if len(recent) < threshold {
		threshold = len(recent)
	}
	stressed := 0
	for _, prior := range recent {
		if entryStressed(prior) {
			stressed++
		}
	}
	if stressed >= threshold {
		return models.StressTypeChronic
	}

	if level >= 4 && entryCalm(recent[0]) {
		return models.StressTypeAcute
	}

	notes := strings.ToLower(entry.Notes)
	for _, marker := range anticipatoryMarkers {
		if strings.Contains(notes, marker) {
			return models.StressTypeAnticipatory
		}
	}
	for _, marker := range reactiveMarkers {
		if strings.Contains(notes, marker) {
			return models.StressTypeReactive
		}
	}

	if level >= 3 {
		return models.StressTypeAcute
	}
	return models.StressTypeNone
}

// entryStressed reports whether a prior entry independently qualifies as
// a stressed day for chronic detection.
func entryStressed(entry *models.DailyEntry) bool {
	if entry == nil {
		return false
	}
	if entry.IsBasic() {
		return entry.Basic.EmotionalState == models.StateNegative
	}
	if entry.IsEnhanced() {
		return entry.Enhanced.StressLevel >= 3 || chronicEmotions[entry.Enhanced.PrimaryEmotion]
	}
	return false
}

// entryCalm reports whether a prior entry qualifies as a calm day, used
// to recognize an acute spike against a calm baseline.
func entryCalm(entry *models.DailyEntry) bool {
	if entry == nil {
		return false
	}
	if entry.IsBasic() {
		return entry.Basic.EmotionalState == models.StatePositive
	}
	if entry.IsEnhanced() {
		return entry.Enhanced.StressLevel >= 1 && entry.Enhanced.StressLevel <= 2
	}
	return false
}

// describePatterns renders human-readable pattern descriptions for the
// detected stress type.
func describePatterns(stressType models.StressType) []string {
	switch stressType {
	case models.StressTypeChronic:
		return []string{"Stress has stayed elevated across several recent check-ins"}
	case models.StressTypeAcute:
		return []string{"Stress spiked compared to your recent baseline"}
	case models.StressTypeAnticipatory:
		return []string{"Your notes point to worry about something ahead"}
	case models.StressTypeReactive:
		return []string{"Stress appears tied to a specific recent event"}
	default:
		return nil
	}
}

// buildSuggestions assembles the tiered level suggestions plus any
// pattern-specific ones. Exactly one level tier fires: none below 3,
// mindfulness at exactly 3, both break suggestions at 4 and above.
func buildSuggestions(level int, stressType models.StressType) []string {
	var suggestions []string
	switch {
	case level >= 4:
		suggestions = append(suggestions, SuggestionTakeBreaks, SuggestionBreathing)
	case level == 3:
		suggestions = append(suggestions, SuggestionMindfulness)
	}

	switch stressType {
	case models.StressTypeChronic:
		suggestions = append(suggestions, "A consistent wind-down routine may help break the streak of stressful days")
	case models.StressTypeAnticipatory:
		suggestions = append(suggestions, "Try writing down what is within your control about the upcoming situation")
	case models.StressTypeReactive:
		suggestions = append(suggestions, "Give yourself time to process what happened before taking on more")
	}
	return suggestions
}

// clampLevel keeps a derived level inside [MinStressLevel, MaxStressLevel]
func clampLevel(level int) int {
	if level < MinStressLevel {
		return MinStressLevel
	}
	if level > MaxStressLevel {
		return MaxStressLevel
	}
	return level
}

// stringSet is an insertion-ordered set of trigger strings
type stringSet struct {
	seen  map[string]bool
	order []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]bool)}
}

func (s *stringSet) add(value string) {
	if s.seen[value] {
		return
	}
	s.seen[value] = true
	s.order = append(s.order, value)
}

func (s *stringSet) values() []string {
	return s.order
}
