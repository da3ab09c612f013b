package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mindtide/mindtide/internal/database"
	"github.com/mindtide/mindtide/internal/middleware"
	"github.com/mindtide/mindtide/internal/models"
	"go.uber.org/zap"
)

// DefaultReportLimit is how many stored reports a list request returns
const DefaultReportLimit = 12

// WeeklyReportBuilder computes a report from stored data when no
// persisted report exists yet. The worker's processor implements this.
type WeeklyReportBuilder interface {
	BuildWeeklyReport(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.WeeklyReport, error)
}

// ReportHandler handles weekly report requests
type ReportHandler struct {
	reportRepo database.ReportRepositoryInterface
	builder    WeeklyReportBuilder
	logger     *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportRepo database.ReportRepositoryInterface, builder WeeklyReportBuilder, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{
		reportRepo: reportRepo,
		builder:    builder,
		logger:     logger,
	}
}

// RegisterRoutes registers report routes on the given router
// The router should already have the /reports prefix
func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/weekly", h.GetWeeklyReport).Methods("GET")
	r.HandleFunc("/weekly/recent", h.ListRecentReports).Methods("GET")
}

// GetWeeklyReport returns the report for one week, computing it on
// demand when the worker has not stored it yet.
func (h *ReportHandler) GetWeeklyReport(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	raw := r.URL.Query().Get("week_start")
	if raw == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "week_start is required")
		return
	}
	weekStart, err := time.Parse(dateLayout, raw)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid week_start, expected YYYY-MM-DD")
		return
	}
	weekStart = weekStart.UTC()

	ctx := r.Context()
	report, err := h.reportRepo.GetByUserAndWeek(ctx, user.ID, weekStart)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load report")
		return
	}

	if report == nil {
		if h.builder == nil {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Report not generated yet")
			return
		}
		report, err = h.builder.BuildWeeklyReport(ctx, user.ID, weekStart)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute report")
			return
		}
		// Best effort: cache the computed report for the next read.
		if storeErr := h.reportRepo.Upsert(ctx, report); storeErr != nil {
			h.logger.Warn("report_cache_failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(storeErr),
			)
		}
	}

	respondJSON(w, http.StatusOK, report)
}

// ListRecentReports lists the newest stored reports
func (h *ReportHandler) ListRecentReports(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	limit := DefaultReportLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 52 {
			limit = parsed
		}
	}

	reports, err := h.reportRepo.ListRecent(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list reports")
		return
	}

	respondJSON(w, http.StatusOK, reports)
}
