package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/models"
)

// EntryRepository handles daily check-in database operations
type EntryRepository struct {
	db *DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create inserts a new daily entry. The (user_id, date) pair is unique;
// a second check-in on the same day must go through Update instead.
func (r *EntryRepository) Create(ctx context.Context, entry *models.DailyEntry) error {
	query := `
		INSERT INTO daily_entries (id, user_id, date, kind, payload, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	payloadJSON, err := marshalEntryPayload(entry)
	if err != nil {
		return err
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Date,
		entry.Kind,
		payloadJSON,
		entry.Notes,
		now,
		now,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// GetByID retrieves an entry by ID
func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DailyEntry, error) {
	query := `
		SELECT id, user_id, date, kind, payload, notes, created_at, updated_at
		FROM daily_entries
		WHERE id = $1
	`
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// GetByUserAndDate retrieves the entry for one calendar day, or nil when
// the user has not checked in that day.
func (r *EntryRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyEntry, error) {
	query := `
		SELECT id, user_id, date, kind, payload, notes, created_at, updated_at
		FROM daily_entries
		WHERE user_id = $1 AND date = $2
	`
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, userID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry by date: %w", err)
	}
	return entry, nil
}

// ListRange retrieves entries inside [from, to] ordered ascending by date
func (r *EntryRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.DailyEntry, error) {
	query := `
		SELECT id, user_id, date, kind, payload, notes, created_at, updated_at
		FROM daily_entries
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	return r.queryEntries(ctx, query, userID, from, to)
}

// GetRecent retrieves up to limit entries strictly before the given date,
// ordered most-recent-first, matching what stress classification expects.
func (r *EntryRepository) GetRecent(ctx context.Context, userID uuid.UUID, before time.Time, limit int) ([]*models.DailyEntry, error) {
	query := `
		SELECT id, user_id, date, kind, payload, notes, created_at, updated_at
		FROM daily_entries
		WHERE user_id = $1 AND date < $2
		ORDER BY date DESC
		LIMIT $3
	`
	return r.queryEntries(ctx, query, userID, before, limit)
}

// Update rewrites an entry's shape, payload and notes. Amendment-window
// enforcement is the handler's job; the repository stays mechanical.
func (r *EntryRepository) Update(ctx context.Context, entry *models.DailyEntry) error {
	query := `
		UPDATE daily_entries
		SET kind = $2, payload = $3, notes = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at
	`

	payloadJSON, err := marshalEntryPayload(entry)
	if err != nil {
		return err
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.Kind,
		payloadJSON,
		entry.Notes,
		now,
	).Scan(&entry.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("entry not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	return nil
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.DailyEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.DailyEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// entryPayload is the JSONB column shape. Exactly one member is set,
// matching the entry kind.
type entryPayload struct {
	Basic    *models.BasicCheckIn    `json:"basic,omitempty"`
	Enhanced *models.EnhancedCheckIn `json:"enhanced,omitempty"`
}

func marshalEntryPayload(entry *models.DailyEntry) ([]byte, error) {
	payloadJSON, err := json.Marshal(entryPayload{Basic: entry.Basic, Enhanced: entry.Enhanced})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry payload: %w", err)
	}
	return payloadJSON, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.DailyEntry, error) {
	entry := &models.DailyEntry{}
	var payloadJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Date,
		&entry.Kind,
		&payloadJSON,
		&entry.Notes,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var payload entryPayload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry payload: %w", err)
	}
	entry.Basic = payload.Basic
	entry.Enhanced = payload.Enhanced

	entry.Date = entry.Date.UTC()
	return entry, nil
}
