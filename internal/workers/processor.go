// Package workers consumes queued jobs: classifying daily check-ins,
// generating weekly reports, and sweeping nudge rules.
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mindtide/mindtide/internal/database"
	"github.com/mindtide/mindtide/internal/models"
	"github.com/mindtide/mindtide/internal/nudge"
	"github.com/mindtide/mindtide/internal/queue"
	"github.com/mindtide/mindtide/internal/services/ai"
	"github.com/mindtide/mindtide/internal/wellness"
	"go.uber.org/zap"
)

// RecentWindowSize is how many prior entries classification looks at
const RecentWindowSize = 7

// Processor handles all wellness job types
type Processor struct {
	classifier     *wellness.Classifier
	entryRepo      database.EntryRepositoryInterface
	assessmentRepo database.AssessmentRepositoryInterface
	completionRepo database.CompletionRepositoryInterface
	reportRepo     database.ReportRepositoryInterface
	nudgeStore     *nudge.Store
	nudgeRules     []models.NudgeRule
	jobQueue       queue.JobQueue // For re-enqueueing jobs with delays
	logger         *zap.Logger
}

// NewProcessor creates a job processor. nudgeStore and nudgeRules may be
// nil/empty when the nudge sweep is not wired.
func NewProcessor(
	classifier *wellness.Classifier,
	entryRepo database.EntryRepositoryInterface,
	assessmentRepo database.AssessmentRepositoryInterface,
	completionRepo database.CompletionRepositoryInterface,
	reportRepo database.ReportRepositoryInterface,
	nudgeStore *nudge.Store,
	nudgeRules []models.NudgeRule,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		classifier:     classifier,
		entryRepo:      entryRepo,
		assessmentRepo: assessmentRepo,
		completionRepo: completionRepo,
		reportRepo:     reportRepo,
		nudgeStore:     nudgeStore,
		nudgeRules:     nudgeRules,
		jobQueue:       jobQueue,
		logger:         logger,
	}
}

// ProcessClassificationJob classifies one entry and stores the assessment
func (p *Processor) ProcessClassificationJob(ctx context.Context, job *queue.Job) error {
	if job.EntryID == nil {
		return fmt.Errorf("entry_id is required for classification job")
	}

	entry, err := p.entryRepo.GetByID(ctx, *job.EntryID)
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	if entry.UserID != job.UserID {
		return fmt.Errorf("entry does not belong to user")
	}

	recent, err := p.entryRepo.GetRecent(ctx, job.UserID, entry.Date, RecentWindowSize)
	if err != nil {
		// History is an enrichment, not a requirement.
		p.logger.Warn("recent_window_unavailable",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
		recent = nil
	}

	assessment := p.classifier.Classify(ctx, entry, recent)
	assessment.UserID = entry.UserID
	assessment.EntryDate = entry.Date

	if err := p.assessmentRepo.Upsert(ctx, assessment); err != nil {
		return fmt.Errorf("failed to store assessment: %w", err)
	}

	p.logger.Info("entry_classified",
		zap.String("entry_id", entry.ID.String()),
		zap.Int("stress_level", assessment.StressLevel),
		zap.String("stress_type", string(assessment.StressType)),
		zap.String("confidence", string(assessment.Confidence)),
	)
	return nil
}

// ProcessWeeklyReportJob aggregates one user's week and stores the report
func (p *Processor) ProcessWeeklyReportJob(ctx context.Context, job *queue.Job) error {
	if job.WeekStart == nil {
		return fmt.Errorf("week_start is required for weekly report job")
	}

	report, err := p.BuildWeeklyReport(ctx, job.UserID, *job.WeekStart)
	if err != nil {
		return err
	}

	if err := p.reportRepo.Upsert(ctx, report); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	p.logger.Info("weekly_report_generated",
		zap.String("user_id", job.UserID.String()),
		zap.Time("week_start", *job.WeekStart),
		zap.Int("check_in_rate", report.Metrics.CheckInRate),
	)
	return nil
}

// BuildWeeklyReport loads one week of data and runs the aggregator. The
// report handler shares this path for compute-on-demand reads.
func (p *Processor) BuildWeeklyReport(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.WeeklyReport, error) {
	weekStart = weekStart.UTC().Truncate(24 * time.Hour)
	weekEnd := weekStart.AddDate(0, 0, wellness.DaysPerWeek-1)

	entries, err := p.entryRepo.ListRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	stored, err := p.assessmentRepo.ListRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessments: %w", err)
	}

	completions, err := p.completionRepo.ListRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}

	// The aggregator expects assessments parallel to entries by date.
	byDate := make(map[string]*models.StressAssessment, len(stored))
	for _, assessment := range stored {
		byDate[assessment.EntryDate.Format("2006-01-02")] = assessment
	}
	assessments := make([]*models.StressAssessment, len(entries))
	for i, entry := range entries {
		assessments[i] = byDate[entry.Date.Format("2006-01-02")]
	}

	return wellness.AggregateWeek(userID, weekStart, entries, assessments, completions), nil
}

// ProcessNudgeSweepJob evaluates nudge rules against the user's latest
// assessment. A day without an assessment simply fires nothing.
func (p *Processor) ProcessNudgeSweepJob(ctx context.Context, job *queue.Job) error {
	if p.nudgeStore == nil || len(p.nudgeRules) == 0 {
		return nil
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	assessment, err := p.assessmentRepo.GetByUserAndDate(ctx, job.UserID, today)
	if err != nil {
		return fmt.Errorf("failed to load assessment: %w", err)
	}

	fired := nudge.Evaluate(p.nudgeStore, p.nudgeRules, job.UserID, assessment, now)
	if len(fired) > 0 {
		p.logger.Info("nudges_fired",
			zap.String("user_id", job.UserID.String()),
			zap.Int("count", len(fired)),
		)
	}
	return nil
}

// ProcessJob processes a job based on its type
func (p *Processor) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		p.logger.Debug("job_not_ready",
			zap.String("job_id", job.ID.String()),
			zap.Timep("not_before", job.NotBefore),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			p.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeEntryClassification:
		if err := p.ProcessClassificationJob(ctx, job); err != nil {
			return p.handleJobError(ctx, msg, job, err, "classification")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeWeeklyReport:
		if err := p.ProcessWeeklyReportJob(ctx, job); err != nil {
			return p.handleJobError(ctx, msg, job, err, "weekly report")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeNudgeSweep:
		if err := p.ProcessNudgeSweepJob(ctx, job); err != nil {
			// Sweep failures are low-stakes; the next sweep covers them.
			if nackErr := msg.Nack(false); nackErr != nil {
				p.logger.Warn("job_nack_failed", zap.Error(nackErr))
			}
			return fmt.Errorf("nudge sweep failed: %w", err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack nudge sweep job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles job failures: rate limits and quota exhaustion
// re-enqueue with a NotBefore delay, everything else uses the standard
// retry budget before landing in the DLQ.
func (p *Processor) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error, jobType string) error {
	if ai.IsQuotaError(err) || ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		p.logger.Warn("job_delayed",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", jobType),
			zap.Bool("quota", ai.IsQuotaError(err)),
			zap.Time("not_before", notBefore),
			zap.Error(err),
		)

		if p.jobQueue != nil && (ai.IsQuotaError(err) || job.CanRetry()) {
			delayedJob := &queue.Job{
				ID:         job.ID,
				Type:       job.Type,
				UserID:     job.UserID,
				EntryID:    job.EntryID,
				WeekStart:  job.WeekStart,
				NotBefore:  &notBefore,
				NotAfter:   job.NotAfter,
				Metadata:   job.Metadata,
				CreatedAt:  job.CreatedAt,
				RetryCount: job.RetryCount + 1,
				MaxRetries: job.MaxRetries,
			}

			if ackErr := msg.Ack(); ackErr != nil {
				p.logger.Warn("job_ack_failed", zap.Error(ackErr))
			}

			if enqueueErr := p.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("%s delayed, failed to re-enqueue: %w", jobType, enqueueErr)
			}
			return nil
		}

		// No queue access: nack without requeue to prevent hammering the API.
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("%s delayed (job %s): %w", jobType, job.ID, err)
	}

	if job.CanRetry() {
		job.IncrementRetry()
		p.logger.Warn("job_retry",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", jobType),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	p.logger.Error("job_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", jobType),
		zap.Int("retries", job.MaxRetries),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		p.logger.Warn("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
