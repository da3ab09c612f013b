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

// ReportRepository handles weekly report database operations
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Upsert stores the report for one (user, week start). Regenerating a
// week replaces the earlier report.
func (r *ReportRepository) Upsert(ctx context.Context, report *models.WeeklyReport) error {
	query := `
		INSERT INTO weekly_reports (id, user_id, week_start, week_end, report, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, week_start) DO UPDATE SET
			week_end = EXCLUDED.week_end,
			report = EXCLUDED.report,
			generated_at = EXCLUDED.generated_at
		RETURNING id
	`

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	err = r.db.QueryRowContext(ctx, query,
		report.ID,
		report.UserID,
		report.WeekStart,
		report.WeekEnd,
		reportJSON,
		report.GeneratedAt,
	).Scan(&report.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}

	return nil
}

// GetByUserAndWeek retrieves the stored report for one week, or nil when
// it has not been generated yet.
func (r *ReportRepository) GetByUserAndWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.WeeklyReport, error) {
	query := `
		SELECT report FROM weekly_reports
		WHERE user_id = $1 AND week_start = $2
	`

	var reportJSON []byte
	err := r.db.QueryRowContext(ctx, query, userID, weekStart).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report := &models.WeeklyReport{}
	if err := json.Unmarshal(reportJSON, report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return report, nil
}

// ListRecent retrieves the newest reports for a user, most recent first
func (r *ReportRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.WeeklyReport, error) {
	query := `
		SELECT report FROM weekly_reports
		WHERE user_id = $1
		ORDER BY week_start DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.WeeklyReport
	for rows.Next() {
		var reportJSON []byte
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report := &models.WeeklyReport{}
		if err := json.Unmarshal(reportJSON, report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}
