package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/models"
)

// CompletionRepository handles activity completion database operations
type CompletionRepository struct {
	db *DB
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(db *DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Create records one completed activity
func (r *CompletionRepository) Create(ctx context.Context, completion *models.ActivityCompletion) error {
	query := `
		INSERT INTO activity_completions (id, user_id, activity_id, date, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if completion.ID == uuid.Nil {
		completion.ID = uuid.New()
	}
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		completion.ID,
		completion.UserID,
		completion.ActivityID,
		completion.Date,
		completion.Rating,
		now,
	).Scan(&completion.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create completion: %w", err)
	}

	return nil
}

// ListRange retrieves completions inside [from, to] ordered by date
func (r *CompletionRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ActivityCompletion, error) {
	query := `
		SELECT id, user_id, activity_id, date, rating, created_at
		FROM activity_completions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var completions []models.ActivityCompletion
	for rows.Next() {
		var completion models.ActivityCompletion
		err := rows.Scan(
			&completion.ID,
			&completion.UserID,
			&completion.ActivityID,
			&completion.Date,
			&completion.Rating,
			&completion.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completion.Date = completion.Date.UTC()
		completions = append(completions, completion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}

	return completions, nil
}
