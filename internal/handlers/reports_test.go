package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mindtide/mindtide/internal/models"
)

type fakeReportRepo struct {
	stored   *models.WeeklyReport
	upserted []*models.WeeklyReport
	recent   []*models.WeeklyReport
}

func (f *fakeReportRepo) Upsert(ctx context.Context, report *models.WeeklyReport) error {
	f.upserted = append(f.upserted, report)
	return nil
}

func (f *fakeReportRepo) GetByUserAndWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.WeeklyReport, error) {
	return f.stored, nil
}

func (f *fakeReportRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.WeeklyReport, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type stubBuilder struct {
	report *models.WeeklyReport
	err    error
	calls  int
}

func (s *stubBuilder) BuildWeeklyReport(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.WeeklyReport, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func newReportRouter(h *ReportHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/reports").Subrouter())
	return r
}

func TestGetWeeklyReport(t *testing.T) {
	t.Parallel()

	user := testUser()
	weekStart := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	t.Run("stored report is served without computing", func(t *testing.T) {
		t.Parallel()

		repo := &fakeReportRepo{stored: &models.WeeklyReport{UserID: user.ID, WeekStart: weekStart}}
		builder := &stubBuilder{}
		handler := NewReportHandler(repo, builder, nil)
		router := newReportRouter(handler)

		req := authedRequest("GET", "/reports/weekly?week_start=2024-03-11", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
		}
		if builder.calls != 0 {
			t.Errorf("builder called %d times for a stored report, want 0", builder.calls)
		}
	})

	t.Run("missing report is computed and cached", func(t *testing.T) {
		t.Parallel()

		repo := &fakeReportRepo{}
		builder := &stubBuilder{report: &models.WeeklyReport{UserID: user.ID, WeekStart: weekStart}}
		handler := NewReportHandler(repo, builder, nil)
		router := newReportRouter(handler)

		req := authedRequest("GET", "/reports/weekly?week_start=2024-03-11", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
		}
		if builder.calls != 1 {
			t.Errorf("builder called %d times, want 1", builder.calls)
		}
		if len(repo.upserted) != 1 {
			t.Errorf("computed report not cached: %d upserts", len(repo.upserted))
		}
	})

	t.Run("builder failure surfaces as server error", func(t *testing.T) {
		t.Parallel()

		repo := &fakeReportRepo{}
		builder := &stubBuilder{err: errors.New("db down")}
		handler := NewReportHandler(repo, builder, nil)
		router := newReportRouter(handler)

		req := authedRequest("GET", "/reports/weekly?week_start=2024-03-11", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500 (body: %s)", rec.Code, rec.Body.String())
		}
	})

	t.Run("no builder means not found", func(t *testing.T) {
		t.Parallel()

		handler := NewReportHandler(&fakeReportRepo{}, nil, nil)
		router := newReportRouter(handler)

		req := authedRequest("GET", "/reports/weekly?week_start=2024-03-11", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 (body: %s)", rec.Code, rec.Body.String())
		}
	})

	t.Run("week_start is required", func(t *testing.T) {
		t.Parallel()

		handler := NewReportHandler(&fakeReportRepo{}, &stubBuilder{}, nil)
		router := newReportRouter(handler)

		req := authedRequest("GET", "/reports/weekly", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
		}
	})
}

func TestListRecentReports(t *testing.T) {
	t.Parallel()

	user := testUser()
	repo := &fakeReportRepo{
		recent: []*models.WeeklyReport{
			{UserID: user.ID, WeekStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
			{UserID: user.ID, WeekStart: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		},
	}
	handler := NewReportHandler(repo, nil, nil)
	router := newReportRouter(handler)

	req := authedRequest("GET", "/reports/weekly/recent?limit=1", nil, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
}
