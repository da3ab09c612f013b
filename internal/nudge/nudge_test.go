package nudge

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/models"
)

func testRule(name string, minLevel int) models.NudgeRule {
	return models.NudgeRule{
		Name:           name,
		MinStressLevel: minLevel,
		Message:        "Take a short breathing break",
		MaxPerDay:      2,
		TTLMinutes:     60,
	}
}

func TestStorePutGet(t *testing.T) {
	t.Parallel()

	store := NewStore()
	userID := uuid.New()

	store.Put(models.Nudge{
		ID:        uuid.New(),
		UserID:    userID,
		Rule:      "high-stress",
		Message:   "Breathe",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})

	if got := store.ActiveCount(userID); got != 1 {
		t.Errorf("ActiveCount = %d, want 1", got)
	}
	if got := store.ActiveCount(uuid.New()); got != 0 {
		t.Errorf("ActiveCount for other user = %d, want 0", got)
	}

	store.Evict(userID)
	if got := store.ActiveCount(userID); got != 0 {
		t.Errorf("ActiveCount after evict = %d, want 0", got)
	}
}

func TestStorePrunesExpired(t *testing.T) {
	t.Parallel()

	store := NewStore()
	userID := uuid.New()

	store.Put(models.Nudge{
		ID:        uuid.New(),
		UserID:    userID,
		Rule:      "stale",
		Message:   "old",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	if got := store.ActiveCount(userID); got != 0 {
		t.Errorf("ActiveCount = %d, want expired nudge pruned", got)
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	noon := time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("fires above threshold", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		fired := Evaluate(store, []models.NudgeRule{testRule("high", 4)}, userID,
			&models.StressAssessment{StressLevel: 4}, noon)
		if len(fired) != 1 {
			t.Fatalf("fired = %d, want 1", len(fired))
		}
		if fired[0].Rule != "high" || fired[0].UserID != userID {
			t.Errorf("nudge = %+v, want rule high for user", fired[0])
		}
		if !fired[0].ExpiresAt.Equal(noon.Add(time.Hour)) {
			t.Errorf("ExpiresAt = %v, want rule TTL applied", fired[0].ExpiresAt)
		}
	})

	t.Run("skips below threshold", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		fired := Evaluate(store, []models.NudgeRule{testRule("high", 4)}, userID,
			&models.StressAssessment{StressLevel: 2}, noon)
		if len(fired) != 0 {
			t.Errorf("fired = %d, want 0", len(fired))
		}
	})

	t.Run("respects quiet hours", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		rule := testRule("night", 0)
		rule.QuietStartHour = 22
		rule.QuietEndHour = 8
		lateNight := time.Date(2024, 3, 11, 23, 0, 0, 0, time.UTC)
		fired := Evaluate(store, []models.NudgeRule{rule}, userID,
			&models.StressAssessment{StressLevel: 5}, lateNight)
		if len(fired) != 0 {
			t.Errorf("fired = %d, want 0 inside quiet hours", len(fired))
		}
	})

	t.Run("enforces per-day cap", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		rules := []models.NudgeRule{testRule("capped", 0)}
		assessment := &models.StressAssessment{StressLevel: 3}
		Evaluate(store, rules, userID, assessment, noon)
		Evaluate(store, rules, userID, assessment, noon)
		fired := Evaluate(store, rules, userID, assessment, noon)
		if len(fired) != 0 {
			t.Errorf("third evaluation fired = %d, want 0 at cap", len(fired))
		}
		if got := store.ActiveCount(userID); got != 2 {
			t.Errorf("ActiveCount = %d, want 2", got)
		}
	})

	t.Run("nil assessment fires nothing", func(t *testing.T) {
		t.Parallel()
		store := NewStore()
		if fired := Evaluate(store, []models.NudgeRule{testRule("any", 0)}, userID, nil, noon); fired != nil {
			t.Errorf("fired = %v, want nil", fired)
		}
	})
}

func TestParseRules(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		raw := []byte(`
rules:
  - name: high-stress
    min_stress_level: 4
    message: "Pause for a breathing exercise"
    max_per_day: 2
    quiet_start_hour: 22
    quiet_end_hour: 8
    ttl_minutes: 120
`)
		rules, err := ParseRules(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != 1 || rules[0].Name != "high-stress" || rules[0].TTLMinutes != 120 {
			t.Errorf("rules = %+v", rules)
		}
	})

	t.Run("missing message rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseRules([]byte("rules:\n  - name: broken\n")); err == nil {
			t.Error("expected error for missing message")
		}
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		t.Parallel()
		raw := []byte(`
rules:
  - name: twice
    message: a
  - name: twice
    message: b
`)
		if _, err := ParseRules(raw); err == nil {
			t.Error("expected error for duplicate rule names")
		}
	})

	t.Run("max_per_day defaults to one", func(t *testing.T) {
		t.Parallel()
		rules, err := ParseRules([]byte("rules:\n  - name: solo\n    message: hi\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rules[0].MaxPerDay != 1 {
			t.Errorf("MaxPerDay = %d, want default 1", rules[0].MaxPerDay)
		}
	})
}
