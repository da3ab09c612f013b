package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mindtide/mindtide/internal/models"
)

// AssessmentRepository handles stress assessment database operations
type AssessmentRepository struct {
	db *DB
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Upsert stores the assessment for one (user, entry date). Amending an
// entry re-runs classification, so a later write replaces the earlier one.
func (r *AssessmentRepository) Upsert(ctx context.Context, assessment *models.StressAssessment) error {
	query := `
		INSERT INTO stress_assessments
			(id, user_id, entry_date, stress_level, stress_type, confidence, triggers, patterns, suggestions, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, entry_date) DO UPDATE SET
			stress_level = EXCLUDED.stress_level,
			stress_type = EXCLUDED.stress_type,
			confidence = EXCLUDED.confidence,
			triggers = EXCLUDED.triggers,
			patterns = EXCLUDED.patterns,
			suggestions = EXCLUDED.suggestions,
			source = EXCLUDED.source,
			created_at = EXCLUDED.created_at
		RETURNING id, created_at
	`

	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		assessment.ID,
		assessment.UserID,
		assessment.EntryDate,
		assessment.StressLevel,
		assessment.StressType,
		assessment.Confidence,
		pq.Array(assessment.Triggers),
		pq.Array(assessment.Patterns),
		pq.Array(assessment.Suggestions),
		assessment.Source,
		now,
	).Scan(&assessment.ID, &assessment.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert assessment: %w", err)
	}

	return nil
}

// GetByUserAndDate retrieves the assessment for one calendar day, or nil
// when classification has not run for that day yet.
func (r *AssessmentRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.StressAssessment, error) {
	query := `
		SELECT id, user_id, entry_date, stress_level, stress_type, confidence, triggers, patterns, suggestions, source, created_at
		FROM stress_assessments
		WHERE user_id = $1 AND entry_date = $2
	`
	assessment, err := scanAssessment(r.db.QueryRowContext(ctx, query, userID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return assessment, nil
}

// ListRange retrieves assessments inside [from, to] ordered ascending by
// entry date.
func (r *AssessmentRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StressAssessment, error) {
	query := `
		SELECT id, user_id, entry_date, stress_level, stress_type, confidence, triggers, patterns, suggestions, source, created_at
		FROM stress_assessments
		WHERE user_id = $1 AND entry_date >= $2 AND entry_date <= $3
		ORDER BY entry_date ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*models.StressAssessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, assessment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}

	return assessments, nil
}

func scanAssessment(row rowScanner) (*models.StressAssessment, error) {
	assessment := &models.StressAssessment{}
	err := row.Scan(
		&assessment.ID,
		&assessment.UserID,
		&assessment.EntryDate,
		&assessment.StressLevel,
		&assessment.StressType,
		&assessment.Confidence,
		pq.Array(&assessment.Triggers),
		pq.Array(&assessment.Patterns),
		pq.Array(&assessment.Suggestions),
		&assessment.Source,
		&assessment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	assessment.EntryDate = assessment.EntryDate.UTC()
	return assessment, nil
}

