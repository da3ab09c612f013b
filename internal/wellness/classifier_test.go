package wellness

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mindtide/mindtide/internal/models"
)

// stubAnalyzer returns a fixed insight or error and counts invocations
type stubAnalyzer struct {
	insight *TextInsight
	err     error
	calls   int
}

func (s *stubAnalyzer) AnalyzeNotes(_ context.Context, _ string) (*TextInsight, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.insight, nil
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func basicEntry(state models.EmotionalState, notes string) *models.DailyEntry {
	return &models.DailyEntry{
		Date:  day(15),
		Kind:  models.EntryKindBasic,
		Basic: &models.BasicCheckIn{EmotionalState: state},
		Notes: notes,
	}
}

func enhancedEntry(in models.EnhancedCheckIn, notes string) *models.DailyEntry {
	return &models.DailyEntry{
		Date:     day(15),
		Kind:     models.EntryKindEnhanced,
		Enhanced: &in,
		Notes:    notes,
	}
}

func stressedHistory(n int) []*models.DailyEntry {
	history := make([]*models.DailyEntry, 0, n)
	for i := 0; i < n; i++ {
		history = append(history, &models.DailyEntry{
			Date: day(14 - i),
			Kind: models.EntryKindEnhanced,
			Enhanced: &models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionStressed,
				PrimaryIntensity: models.IntensityHigh,
				StressLevel:      4,
			},
		})
	}
	return history
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entry    *models.DailyEntry
		recent   []*models.DailyEntry
		analyzer TextAnalyzer
		validate func(*testing.T, *models.StressAssessment)
	}{
		{
			name:   "basic negative with no history is acute",
			entry:  basicEntry(models.StateNegative, ""),
			recent: nil,
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 4 {
					t.Errorf("StressLevel = %d, want 4", a.StressLevel)
				}
				if a.Confidence != models.ConfidenceMedium {
					t.Errorf("Confidence = %s, want medium", a.Confidence)
				}
				if a.StressType != models.StressTypeAcute {
					t.Errorf("StressType = %q, want acute", a.StressType)
				}
				if a.Source != models.SourceBasic {
					t.Errorf("Source = %s, want basic", a.Source)
				}
			},
		},
		{
			name:  "basic neutral scores two with low confidence",
			entry: basicEntry(models.StateNeutral, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 2 {
					t.Errorf("StressLevel = %d, want 2", a.StressLevel)
				}
				if a.Confidence != models.ConfidenceLow {
					t.Errorf("Confidence = %s, want low", a.Confidence)
				}
				if a.StressType != models.StressTypeNone {
					t.Errorf("StressType = %q, want none", a.StressType)
				}
			},
		},
		{
			name: "enhanced calm entry carries no stress",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionCalm,
				PrimaryIntensity: models.IntensityLow,
				EnergyLevel:      4,
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 0 {
					t.Errorf("StressLevel = %d, want 0", a.StressLevel)
				}
				if a.StressType != models.StressTypeNone {
					t.Errorf("StressType = %q, want none", a.StressType)
				}
				if a.Source != models.SourceEnhanced {
					t.Errorf("Source = %s, want enhanced", a.Source)
				}
				if len(a.Suggestions) != 0 {
					t.Errorf("Suggestions = %v, want none", a.Suggestions)
				}
			},
		},
		{
			name: "stressful primary uses intensity directly",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionAnxious,
				PrimaryIntensity: models.IntensityVeryHigh,
				EnergyLevel:      3,
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 5 {
					t.Errorf("StressLevel = %d, want 5", a.StressLevel)
				}
				if a.Confidence != models.ConfidenceHigh {
					t.Errorf("Confidence = %s, want high", a.Confidence)
				}
			},
		},
		{
			name: "stressful primary without intensity defaults to four",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion: models.EmotionOverwhelmed,
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 4 {
					t.Errorf("StressLevel = %d, want 4", a.StressLevel)
				}
			},
		},
		{
			name: "moderate primary reduces intensity and caps at three",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionSad,
				PrimaryIntensity: models.IntensityVeryHigh,
				EnergyLevel:      3,
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 3 {
					t.Errorf("StressLevel = %d, want 3", a.StressLevel)
				}
				if a.Confidence != models.ConfidenceMedium {
					t.Errorf("Confidence = %s, want medium", a.Confidence)
				}
			},
		},
		{
			name: "stressful secondary bumps a low baseline",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion: models.EmotionNeutral,
				SecondaryEmotions: []models.SecondaryEmotion{
					{Emotion: models.EmotionAnxious, Intensity: models.IntensityLow},
				},
				EnergyLevel: 3,
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 1 {
					t.Errorf("StressLevel = %d, want 1", a.StressLevel)
				}
			},
		},
		{
			name: "low energy keeps the floor at two",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionContent,
				PrimaryIntensity: models.IntensityModerate,
				EnergyLevel:      1,
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel < 2 {
					t.Errorf("StressLevel = %d, want >= 2", a.StressLevel)
				}
			},
		},
		{
			name: "work tag forces level three and lands in triggers",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion: models.EmotionNeutral,
				EnergyLevel:    3,
				ContextTags:    []models.ContextTag{models.ContextWork},
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel < 3 {
					t.Errorf("StressLevel = %d, want >= 3", a.StressLevel)
				}
				if !containsString(a.Triggers, "work") {
					t.Errorf("Triggers = %v, want to contain work", a.Triggers)
				}
			},
		},
		{
			name: "duplicate context tags collapse in triggers",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion: models.EmotionNeutral,
				ContextTags:    []models.ContextTag{models.ContextSleep, models.ContextSleep},
			}, ""),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if len(a.Triggers) != 1 {
					t.Errorf("Triggers = %v, want single sleep entry", a.Triggers)
				}
			},
		},
		{
			name:  "negative text sentiment overrides a low baseline",
			entry: basicEntry(models.StatePositive, "everything is falling apart"),
			analyzer: &stubAnalyzer{insight: &TextInsight{
				Sentiment: SentimentNegative,
				Topics:    []string{"deadline"},
			}},
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel < 3 {
					t.Errorf("StressLevel = %d, want >= 3", a.StressLevel)
				}
				if a.Confidence != models.ConfidenceHigh {
					t.Errorf("Confidence = %s, want high", a.Confidence)
				}
				if !containsString(a.Triggers, "deadline") {
					t.Errorf("Triggers = %v, want to contain deadline", a.Triggers)
				}
			},
		},
		{
			name:     "analyzer failure is swallowed",
			entry:    basicEntry(models.StateNeutral, "a rough day"),
			analyzer: &stubAnalyzer{err: errors.New("upstream timeout")},
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 2 {
					t.Errorf("StressLevel = %d, want unchanged 2", a.StressLevel)
				}
				if a.Confidence != models.ConfidenceLow {
					t.Errorf("Confidence = %s, want unchanged low", a.Confidence)
				}
			},
		},
		{
			name: "chronic wins over anticipatory keywords",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionStressed,
				PrimaryIntensity: models.IntensityModerate,
			}, "worried about the upcoming review"),
			recent: stressedHistory(3),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressType != models.StressTypeChronic {
					t.Errorf("StressType = %q, want chronic", a.StressType)
				}
			},
		},
		{
			name: "short stressed history still qualifies as chronic",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionStressed,
				PrimaryIntensity: models.IntensityModerate,
			}, ""),
			recent: stressedHistory(2),
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressType != models.StressTypeChronic {
					t.Errorf("StressType = %q, want chronic", a.StressType)
				}
			},
		},
		{
			name: "spike after a calm day is acute",
			entry: enhancedEntry(models.EnhancedCheckIn{
				PrimaryEmotion:   models.EmotionOverwhelmed,
				PrimaryIntensity: models.IntensityHigh,
			}, ""),
			recent: []*models.DailyEntry{
				{
					Date: day(14),
					Kind: models.EntryKindEnhanced,
					Enhanced: &models.EnhancedCheckIn{
						PrimaryEmotion:   models.EmotionCalm,
						PrimaryIntensity: models.IntensityLow,
						StressLevel:      1,
					},
				},
			},
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressType != models.StressTypeAcute {
					t.Errorf("StressType = %q, want acute", a.StressType)
				}
			},
		},
		{
			name:  "anticipatory keywords classify worry about the future",
			entry: basicEntry(models.StateNegative, "anxious about the move next month"),
			recent: []*models.DailyEntry{
				basicEntry(models.StateNeutral, ""),
			},
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressType != models.StressTypeAnticipatory {
					t.Errorf("StressType = %q, want anticipatory", a.StressType)
				}
			},
		},
		{
			name:  "reactive keywords classify event-driven stress",
			entry: basicEntry(models.StateNegative, "upset because of the argument"),
			recent: []*models.DailyEntry{
				basicEntry(models.StateNeutral, ""),
			},
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressType != models.StressTypeReactive {
					t.Errorf("StressType = %q, want reactive", a.StressType)
				}
			},
		},
		{
			name:  "empty entry shape yields insufficient-data assessment",
			entry: &models.DailyEntry{Date: day(15)},
			validate: func(t *testing.T, a *models.StressAssessment) {
				if a.StressLevel != 0 || a.Confidence != models.ConfidenceLow || a.StressType != models.StressTypeNone {
					t.Errorf("got %+v, want minimal assessment", a)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			classifier := NewClassifier(tt.analyzer, nil)
			assessment := classifier.Classify(context.Background(), tt.entry, tt.recent)

			if assessment.StressLevel < MinStressLevel || assessment.StressLevel > MaxStressLevel {
				t.Errorf("StressLevel = %d, outside [%d, %d]", assessment.StressLevel, MinStressLevel, MaxStressLevel)
			}
			if tt.validate != nil {
				tt.validate(t, assessment)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{insight: &TextInsight{
		Sentiment: SentimentNegative,
		Topics:    []string{"workload", "sleep"},
	}}
	classifier := NewClassifier(analyzer, nil)
	entry := enhancedEntry(models.EnhancedCheckIn{
		PrimaryEmotion:   models.EmotionFrustrated,
		PrimaryIntensity: models.IntensityHigh,
		EnergyLevel:      2,
		ContextTags:      []models.ContextTag{models.ContextWork},
	}, "long day because of the outage")
	recent := stressedHistory(2)

	first := classifier.Classify(context.Background(), entry, recent)
	second := classifier.Classify(context.Background(), entry, recent)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated classification differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if analyzer.calls != 2 {
		t.Errorf("analyzer calls = %d, want 2", analyzer.calls)
	}
}

func TestSuggestionTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		level      int
		stressType models.StressType
		want       []string
	}{
		{
			name:  "below three gets no level suggestions",
			level: 2,
		},
		{
			name:  "exactly three gets mindfulness only",
			level: 3,
			want:  []string{SuggestionMindfulness},
		},
		{
			name:  "four and above gets both break suggestions",
			level: 4,
			want:  []string{SuggestionTakeBreaks, SuggestionBreathing},
		},
		{
			name:  "five does not stack the mindfulness tier",
			level: 5,
			want:  []string{SuggestionTakeBreaks, SuggestionBreathing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildSuggestions(tt.level, tt.stressType)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildSuggestions(%d) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}

	t.Run("pattern suggestions append regardless of level", func(t *testing.T) {
		t.Parallel()

		got := buildSuggestions(2, models.StressTypeAnticipatory)
		if len(got) != 1 {
			t.Fatalf("got %v, want exactly the anticipatory suggestion", got)
		}
	})
}

func TestEmotionGroupsPartition(t *testing.T) {
	t.Parallel()

	for _, category := range models.AllEmotionCategories() {
		group, ok := models.GroupOf(category)
		if !ok {
			t.Errorf("category %s has no group", category)
		}
		switch group {
		case models.GroupPositive, models.GroupNeutral, models.GroupChallenging:
		default:
			t.Errorf("category %s mapped to unknown group %s", category, group)
		}
	}
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
