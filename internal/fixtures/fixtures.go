// Package fixtures builds deterministic seed data for tests and demos.
// Every builder returns fresh values on each call; nothing in this
// package holds state between calls, so tests can mutate what they get
// back without affecting each other.
package fixtures

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/models"
)

// seedEpoch anchors all fixture timestamps so builders stay deterministic
var seedEpoch = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

// deterministicID derives a stable UUID from a namespace and index so
// repeated builds of the same fixture set agree on identifiers.
func deterministicID(namespace string, index int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s-%d", namespace, index)))
}

// BasicEntry builds a basic check-in for the given day offset from the
// seed epoch.
func BasicEntry(userID uuid.UUID, dayOffset int, state models.EmotionalState) *models.DailyEntry {
	date := seedEpoch.AddDate(0, 0, dayOffset)
	return &models.DailyEntry{
		ID:        deterministicID("entry", dayOffset),
		UserID:    userID,
		Date:      date,
		Kind:      models.EntryKindBasic,
		Basic:     &models.BasicCheckIn{EmotionalState: state},
		CreatedAt: date,
		UpdatedAt: date,
	}
}

// EnhancedEntry builds an enhanced check-in for the given day offset.
func EnhancedEntry(userID uuid.UUID, dayOffset int, emotion models.EmotionCategory, intensity int) *models.DailyEntry {
	date := seedEpoch.AddDate(0, 0, dayOffset)
	return &models.DailyEntry{
		ID:     deterministicID("entry", dayOffset),
		UserID: userID,
		Date:   date,
		Kind:   models.EntryKindEnhanced,
		Enhanced: &models.EnhancedCheckIn{
			PrimaryEmotion:   emotion,
			PrimaryIntensity: models.IntensityLevel(intensity),
		},
		CreatedAt: date,
		UpdatedAt: date,
	}
}

// Assessment builds a stress assessment aligned to the given day offset.
func Assessment(userID uuid.UUID, dayOffset, level int, triggers ...string) *models.StressAssessment {
	return &models.StressAssessment{
		ID:          deterministicID("assessment", dayOffset),
		UserID:      userID,
		EntryDate:   seedEpoch.AddDate(0, 0, dayOffset),
		StressLevel: level,
		Confidence:  models.ConfidenceMedium,
		Source:      models.SourceBasic,
		Triggers:    triggers,
		CreatedAt:   seedEpoch.AddDate(0, 0, dayOffset),
	}
}

// circleSeeds is the fixed catalog SeedCircles draws from
var circleSeeds = []struct {
	name  string
	topic string
}{
	{"Morning Grounding", "mindfulness"},
	{"Workload Watchers", "work stress"},
	{"Night Owls", "sleep"},
	{"Money Matters", "finances"},
	{"New Parents", "family"},
}

// SeedCircles builds up to len(catalog) support circles. Each call
// returns a fresh slice with fresh structs.
func SeedCircles(count int) []models.SupportCircle {
	if count > len(circleSeeds) {
		count = len(circleSeeds)
	}
	circles := make([]models.SupportCircle, 0, count)
	for i := 0; i < count; i++ {
		circles = append(circles, models.SupportCircle{
			ID:          deterministicID("circle", i),
			Name:        circleSeeds[i].name,
			Topic:       circleSeeds[i].topic,
			MemberCount: 3 + i*2,
			CreatedAt:   seedEpoch,
		})
	}
	return circles
}

var messageBodies = []string{
	"Checking in today felt harder than usual, but I did it.",
	"The breathing exercise actually helped before my meeting.",
	"Anyone else find evenings the toughest part of the day?",
	"Small win: I took a real lunch break for once.",
	"Grateful for this group. Reading along helps even when I'm quiet.",
}

// SeedMessages builds count messages inside the given circle, authored
// round-robin by the given author IDs, one minute apart.
func SeedMessages(circleID uuid.UUID, authors []uuid.UUID, count int) []models.CircleMessage {
	if len(authors) == 0 || count <= 0 {
		return nil
	}
	messages := make([]models.CircleMessage, 0, count)
	for i := 0; i < count; i++ {
		messages = append(messages, models.CircleMessage{
			ID:        deterministicID("message", i),
			CircleID:  circleID,
			AuthorID:  authors[i%len(authors)],
			Body:      messageBodies[i%len(messageBodies)],
			CreatedAt: seedEpoch.Add(time.Duration(i) * time.Minute),
		})
	}
	return messages
}
