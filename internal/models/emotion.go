package models

// EmotionGroup partitions emotion categories into three coarse buckets
type EmotionGroup string

const (
	GroupPositive    EmotionGroup = "positive"
	GroupNeutral     EmotionGroup = "neutral"
	GroupChallenging EmotionGroup = "challenging"
)

// EmotionCategory is a single selectable emotion on an enhanced check-in
type EmotionCategory string

const (
	EmotionJoyful   EmotionCategory = "joyful"
	EmotionGrateful EmotionCategory = "grateful"
	EmotionExcited  EmotionCategory = "excited"
	EmotionContent  EmotionCategory = "content"
	EmotionCalm     EmotionCategory = "calm"
	EmotionHopeful  EmotionCategory = "hopeful"
	EmotionProud    EmotionCategory = "proud"

	EmotionNeutral EmotionCategory = "neutral"
	EmotionTired   EmotionCategory = "tired"
	EmotionBored   EmotionCategory = "bored"
	EmotionPensive EmotionCategory = "pensive"

	EmotionAnxious      EmotionCategory = "anxious"
	EmotionStressed     EmotionCategory = "stressed"
	EmotionOverwhelmed  EmotionCategory = "overwhelmed"
	EmotionFrustrated   EmotionCategory = "frustrated"
	EmotionAngry        EmotionCategory = "angry"
	EmotionSad          EmotionCategory = "sad"
	EmotionDisappointed EmotionCategory = "disappointed"
	EmotionLonely       EmotionCategory = "lonely"
)

// emotionGroups maps every category to exactly one group. Categories not in
// this map are unknown and rejected by validation.
var emotionGroups = map[EmotionCategory]EmotionGroup{
	EmotionJoyful:   GroupPositive,
	EmotionGrateful: GroupPositive,
	EmotionExcited:  GroupPositive,
	EmotionContent:  GroupPositive,
	EmotionCalm:     GroupPositive,
	EmotionHopeful:  GroupPositive,
	EmotionProud:    GroupPositive,

	EmotionNeutral: GroupNeutral,
	EmotionTired:   GroupNeutral,
	EmotionBored:   GroupNeutral,
	EmotionPensive: GroupNeutral,

	EmotionAnxious:      GroupChallenging,
	EmotionStressed:     GroupChallenging,
	EmotionOverwhelmed:  GroupChallenging,
	EmotionFrustrated:   GroupChallenging,
	EmotionAngry:        GroupChallenging,
	EmotionSad:          GroupChallenging,
	EmotionDisappointed: GroupChallenging,
	EmotionLonely:       GroupChallenging,
}

// GroupOf returns the group a category belongs to, and whether the category is known
func GroupOf(category EmotionCategory) (EmotionGroup, bool) {
	group, ok := emotionGroups[category]
	return group, ok
}

// AllEmotionCategories returns every known category. The returned slice is a copy.
func AllEmotionCategories() []EmotionCategory {
	categories := make([]EmotionCategory, 0, len(emotionGroups))
	for category := range emotionGroups {
		categories = append(categories, category)
	}
	return categories
}

// IntensityLevel is a 1-5 scale; zero means "not reported"
type IntensityLevel int

const (
	IntensityUnset    IntensityLevel = 0
	IntensityVeryLow  IntensityLevel = 1
	IntensityLow      IntensityLevel = 2
	IntensityModerate IntensityLevel = 3
	IntensityHigh     IntensityLevel = 4
	IntensityVeryHigh IntensityLevel = 5
)

// Valid reports whether the intensity is a reported in-range value
func (i IntensityLevel) Valid() bool {
	return i >= IntensityVeryLow && i <= IntensityVeryHigh
}

// ContextTag is a free-standing situational label attached to a check-in.
// Tags are independent of emotion groups and only serve as stress-trigger hints.
type ContextTag string

const (
	ContextWork          ContextTag = "work"
	ContextHealth        ContextTag = "health"
	ContextFinances      ContextTag = "finances"
	ContextRelationships ContextTag = "relationships"
	ContextFamily        ContextTag = "family"
	ContextSleep         ContextTag = "sleep"
	ContextSocial        ContextTag = "social"
	ContextWeather       ContextTag = "weather"
)

// ValidContextTag reports whether the tag is one of the known labels
func ValidContextTag(tag ContextTag) bool {
	switch tag {
	case ContextWork, ContextHealth, ContextFinances, ContextRelationships,
		ContextFamily, ContextSleep, ContextSocial, ContextWeather:
		return true
	default:
		return false
	}
}

// StressType is a coarse causal classification of a stress episode
type StressType string

const (
	// StressTypeNone means no stress episode was detected
	StressTypeNone         StressType = ""
	StressTypeAcute        StressType = "acute"
	StressTypeChronic      StressType = "chronic"
	StressTypeAnticipatory StressType = "anticipatory"
	StressTypeReactive     StressType = "reactive"
	StressTypeEustress     StressType = "eustress"
)
