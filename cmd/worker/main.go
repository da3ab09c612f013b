package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindtide/mindtide/internal/config"
	"github.com/mindtide/mindtide/internal/database"
	"github.com/mindtide/mindtide/internal/logger"
	"github.com/mindtide/mindtide/internal/models"
	"github.com/mindtide/mindtide/internal/nudge"
	"github.com/mindtide/mindtide/internal/queue"
	"github.com/mindtide/mindtide/internal/services/ai"
	"github.com/mindtide/mindtide/internal/wellness"
	"github.com/mindtide/mindtide/internal/workers"
	"go.uber.org/zap"
)

const (
	// activeUserWindow bounds which users the periodic sweeps consider
	activeUserWindow = 14 * 24 * time.Hour
	// sweepTimeout bounds one scheduled sweep pass
	sweepTimeout = 5 * time.Minute
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("Starting worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
	)

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to database")

	// Initialize repositories
	entryRepo := database.NewEntryRepository(db)
	assessmentRepo := database.NewAssessmentRepository(db)
	completionRepo := database.NewCompletionRepository(db)
	reportRepo := database.NewReportRepository(db)
	userRepo := database.NewUserRepository(db)

	// Initialize RabbitMQ queue
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// Text analysis is optional: classification falls back to structured
	// fields when no analyzer is configured
	var analyzer wellness.TextAnalyzer
	if cfg.OpenAIKey != "" {
		analyzer = ai.NewOpenAIAnalyzerWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			zapLogger,
			debugMode,
		)
		zapLogger.Info("Initialized text analyzer",
			zap.String("provider", cfg.AIProvider),
			zap.String("model", cfg.AIModel),
		)
	} else {
		zapLogger.Warn("OpenAI key not configured, text analysis disabled")
	}

	classifier := wellness.NewClassifier(analyzer, zapLogger)

	// Nudge rules are optional; without them the sweep jobs no-op.
	// The database-stored document wins over the on-disk file.
	var nudgeRules []models.NudgeRule
	nudgeStore := nudge.NewStore()
	nudgeConfig, err := database.NewNudgeConfigRepository(db).Get(context.Background())
	switch {
	case err != nil:
		zapLogger.Fatal("Failed to load nudge config", zap.Error(err))
	case nudgeConfig != nil:
		nudgeRules, err = nudge.ParseRules([]byte(nudgeConfig.RulesYAML))
		if err != nil {
			zapLogger.Fatal("Stored nudge rules are invalid", zap.Error(err))
		}
		zapLogger.Info("Loaded nudge rules from database",
			zap.Int("rules", len(nudgeRules)),
		)
	case cfg.NudgeRulesPath != "":
		nudgeRules, err = nudge.LoadRules(cfg.NudgeRulesPath)
		if err != nil {
			zapLogger.Fatal("Failed to load nudge rules", zap.Error(err))
		}
		zapLogger.Info("Loaded nudge rules",
			zap.String("path", cfg.NudgeRulesPath),
			zap.Int("rules", len(nudgeRules)),
		)
	default:
		zapLogger.Warn("No nudge rules configured, nudge sweeps disabled")
	}

	// Create job processor
	processor := workers.NewProcessor(
		classifier,
		entryRepo,
		assessmentRepo,
		completionRepo,
		reportRepo,
		nudgeStore,
		nudgeRules,
		jobQueue,
		zapLogger,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule the periodic sweeps. Each tick fans one job per active
	// user into the queue so the work shares the retry/DLQ path with
	// everything else.
	scheduler := nudge.NewScheduler(zapLogger)

	if err := scheduler.AddJob(cfg.WeeklyReportCron, "weekly_report_sweep", sweepTimeout, func(ctx context.Context) error {
		return enqueueWeeklyReports(ctx, userRepo, jobQueue)
	}); err != nil {
		zapLogger.Fatal("Failed to schedule weekly report sweep", zap.Error(err))
	}

	if len(nudgeRules) > 0 {
		if err := scheduler.AddJob(cfg.NudgeSweepCron, "nudge_sweep", sweepTimeout, func(ctx context.Context) error {
			return enqueueNudgeSweeps(ctx, userRepo, jobQueue)
		}); err != nil {
			zapLogger.Fatal("Failed to schedule nudge sweep", zap.Error(err))
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start consuming messages
	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("Failed to start consuming messages", zap.Error(err))
	}

	zapLogger.Info("Worker started, consuming messages from queue")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("Message channel closed")
					return
				}

				// Process job
				if err := processor.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("Failed to process job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Handle errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("Queue error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("Shutdown signal received, stopping worker...")

	// Cancel context to stop processing
	cancel()

	zapLogger.Info("Worker stopped")
}

// enqueueWeeklyReports fans out one weekly_report job per recently
// active user, covering the week that just ended.
func enqueueWeeklyReports(ctx context.Context, userRepo *database.UserRepository, jobQueue queue.JobQueue) error {
	userIDs, err := userRepo.GetActiveUserIDs(ctx, time.Now().UTC().Add(-activeUserWindow))
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	weekStart := previousWeekStart(time.Now().UTC())
	for _, userID := range userIDs {
		if err := jobQueue.Enqueue(ctx, queue.NewWeeklyReportJob(userID, weekStart)); err != nil {
			return fmt.Errorf("failed to enqueue weekly report for user %s: %w", userID, err)
		}
	}
	return nil
}

// enqueueNudgeSweeps fans out one nudge_sweep job per recently active user
func enqueueNudgeSweeps(ctx context.Context, userRepo *database.UserRepository, jobQueue queue.JobQueue) error {
	userIDs, err := userRepo.GetActiveUserIDs(ctx, time.Now().UTC().Add(-activeUserWindow))
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	for _, userID := range userIDs {
		if err := jobQueue.Enqueue(ctx, queue.NewJob(queue.JobTypeNudgeSweep, userID)); err != nil {
			return fmt.Errorf("failed to enqueue nudge sweep for user %s: %w", userID, err)
		}
	}
	return nil
}

// previousWeekStart returns the Monday of the most recently completed
// week, UTC midnight.
func previousWeekStart(now time.Time) time.Time {
	today := now.Truncate(24 * time.Hour)
	offset := (int(today.Weekday()) + 6) % 7 // days since Monday
	thisMonday := today.AddDate(0, 0, -offset)
	return thisMonday.AddDate(0, 0, -7)
}
