// Package nudge evaluates configured nudge rules against stress
// assessments and tracks the resulting nudges in a TTL-evicting store.
package nudge

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/mindtide/mindtide/internal/models"
)

const (
	// DefaultTTL is applied when a rule does not set ttl_minutes
	DefaultTTL = 4 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// Store holds active nudges keyed by user. Entries evict themselves when
// their TTL lapses. Construct one per process; there is no shared global.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates an empty nudge store
func NewStore() *Store {
	return &Store{cache: gocache.New(DefaultTTL, cleanupInterval)}
}

// Put stores a nudge under its user until it expires
func (s *Store) Put(n models.Nudge) {
	ttl := time.Until(n.ExpiresAt)
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	nudges := s.Get(n.UserID)
	nudges = append(nudges, n)
	s.cache.Set(n.UserID.String(), nudges, ttl)
}

// Get returns the active nudges for a user, pruning any that expired
// before the cache's eviction pass got to them.
func (s *Store) Get(userID uuid.UUID) []models.Nudge {
	raw, found := s.cache.Get(userID.String())
	if !found {
		return nil
	}
	stored, ok := raw.([]models.Nudge)
	if !ok {
		return nil
	}
	now := time.Now()
	var active []models.Nudge
	for _, n := range stored {
		if n.ExpiresAt.After(now) {
			active = append(active, n)
		}
	}
	return active
}

// Evict drops all nudges for a user
func (s *Store) Evict(userID uuid.UUID) {
	s.cache.Delete(userID.String())
}

// ActiveCount returns how many unexpired nudges a user has
func (s *Store) ActiveCount(userID uuid.UUID) int {
	return len(s.Get(userID))
}

// CountForRule returns how many of a user's active nudges came from the
// named rule, used to enforce max_per_day.
func (s *Store) CountForRule(userID uuid.UUID, rule string) int {
	count := 0
	for _, n := range s.Get(userID) {
		if n.Rule == rule {
			count++
		}
	}
	return count
}
