package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/models"
)

// EntryRepositoryInterface defines the entry repository operations used
// by handlers and workers. The interface exists for mock implementations
// in tests.
type EntryRepositoryInterface interface {
	Create(ctx context.Context, entry *models.DailyEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DailyEntry, error)
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyEntry, error)
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.DailyEntry, error)
	GetRecent(ctx context.Context, userID uuid.UUID, before time.Time, limit int) ([]*models.DailyEntry, error)
	Update(ctx context.Context, entry *models.DailyEntry) error
}

// AssessmentRepositoryInterface defines the assessment repository operations
type AssessmentRepositoryInterface interface {
	Upsert(ctx context.Context, assessment *models.StressAssessment) error
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.StressAssessment, error)
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StressAssessment, error)
}

// CompletionRepositoryInterface defines the completion repository operations
type CompletionRepositoryInterface interface {
	Create(ctx context.Context, completion *models.ActivityCompletion) error
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ActivityCompletion, error)
}

// ReportRepositoryInterface defines the report repository operations
type ReportRepositoryInterface interface {
	Upsert(ctx context.Context, report *models.WeeklyReport) error
	GetByUserAndWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.WeeklyReport, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.WeeklyReport, error)
}

// Ensure concrete types implement the interfaces
var (
	_ EntryRepositoryInterface      = (*EntryRepository)(nil)
	_ AssessmentRepositoryInterface = (*AssessmentRepository)(nil)
	_ CompletionRepositoryInterface = (*CompletionRepository)(nil)
	_ ReportRepositoryInterface     = (*ReportRepository)(nil)
)
