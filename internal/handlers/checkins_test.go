package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mindtide/mindtide/internal/fixtures"
	"github.com/mindtide/mindtide/internal/middleware"
	"github.com/mindtide/mindtide/internal/models"
	"github.com/mindtide/mindtide/internal/queue"
)

// fakeAffirmer returns a fixed affirmation or a fixed error
type fakeAffirmer struct {
	text string
	err  error
}

func (f *fakeAffirmer) GenerateAffirmation(ctx context.Context, assessment *models.StressAssessment) (string, error) {
	return f.text, f.err
}

type fakeEntryRepo struct {
	byDate  map[string]*models.DailyEntry
	created []*models.DailyEntry
	updated []*models.DailyEntry
	listed  []*models.DailyEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{byDate: make(map[string]*models.DailyEntry)}
}

func (f *fakeEntryRepo) Create(ctx context.Context, entry *models.DailyEntry) error {
	f.created = append(f.created, entry)
	f.byDate[entry.Date.Format("2006-01-02")] = entry
	return nil
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DailyEntry, error) {
	for _, entry := range f.byDate {
		if entry.ID == id {
			return entry, nil
		}
	}
	return nil, nil
}

func (f *fakeEntryRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyEntry, error) {
	return f.byDate[date.Format("2006-01-02")], nil
}

func (f *fakeEntryRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.DailyEntry, error) {
	return f.listed, nil
}

func (f *fakeEntryRepo) GetRecent(ctx context.Context, userID uuid.UUID, before time.Time, limit int) ([]*models.DailyEntry, error) {
	return nil, nil
}

func (f *fakeEntryRepo) Update(ctx context.Context, entry *models.DailyEntry) error {
	f.updated = append(f.updated, entry)
	return nil
}

type fakeAssessmentRepo struct {
	byDate map[string]*models.StressAssessment
}

func (f *fakeAssessmentRepo) Upsert(ctx context.Context, assessment *models.StressAssessment) error {
	return nil
}

func (f *fakeAssessmentRepo) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.StressAssessment, error) {
	if f.byDate == nil {
		return nil, nil
	}
	return f.byDate[date.Format("2006-01-02")], nil
}

func (f *fakeAssessmentRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StressAssessment, error) {
	return nil, nil
}

type fakeJobQueue struct {
	enqueued []*queue.Job
}

func (f *fakeJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeJobQueue) Dequeue(ctx context.Context) (*queue.Message, error) { return nil, nil }

func (f *fakeJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (f *fakeJobQueue) Close() error { return nil }

func (f *fakeJobQueue) HealthCheck(ctx context.Context) error { return nil }

func authedRequest(method, target string, body []byte, user *models.User) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		req = req.WithContext(middleware.SetUserInContext(req.Context(), user))
	}
	return req
}

func newCheckInRouter(h *CheckInHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/checkins").Subrouter())
	return r
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "test@example.com"}
}

func TestCreateCheckIn(t *testing.T) {
	t.Parallel()

	today := time.Now().UTC().Format("2006-01-02")

	tests := []struct {
		name       string
		body       string
		user       *models.User
		wantStatus int
		validate   func(*testing.T, *fakeEntryRepo, *fakeJobQueue)
	}{
		{
			name:       "valid basic check-in",
			body:       `{"date":"` + today + `","basic":{"emotional_state":"negative"},"notes":"rough day"}`,
			user:       testUser(),
			wantStatus: http.StatusCreated,
			validate: func(t *testing.T, repo *fakeEntryRepo, jq *fakeJobQueue) {
				if len(repo.created) != 1 {
					t.Fatalf("created %d entries, want 1", len(repo.created))
				}
				if repo.created[0].Kind != models.EntryKindBasic {
					t.Errorf("Kind = %s, want basic", repo.created[0].Kind)
				}
				if len(jq.enqueued) != 1 || jq.enqueued[0].Type != queue.JobTypeEntryClassification {
					t.Errorf("expected one classification job, got %+v", jq.enqueued)
				}
			},
		},
		{
			name:       "valid enhanced check-in",
			body:       `{"date":"` + today + `","enhanced":{"primary_emotion":"anxious","primary_intensity":4,"context_tags":["work"]}}`,
			user:       testUser(),
			wantStatus: http.StatusCreated,
			validate: func(t *testing.T, repo *fakeEntryRepo, jq *fakeJobQueue) {
				if len(repo.created) != 1 || repo.created[0].Kind != models.EntryKindEnhanced {
					t.Errorf("expected one enhanced entry, got %+v", repo.created)
				}
			},
		},
		{
			name:       "both shapes rejected",
			body:       `{"date":"` + today + `","basic":{"emotional_state":"neutral"},"enhanced":{"primary_emotion":"calm"}}`,
			user:       testUser(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "neither shape rejected",
			body:       `{"date":"` + today + `","notes":"just notes"}`,
			user:       testUser(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown emotional state rejected",
			body:       `{"date":"` + today + `","basic":{"emotional_state":"ecstatic"}}`,
			user:       testUser(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown emotion category rejected",
			body:       `{"date":"` + today + `","enhanced":{"primary_emotion":"bewildered"}}`,
			user:       testUser(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid date rejected",
			body:       `{"date":"03/11/2024","basic":{"emotional_state":"neutral"}}`,
			user:       testUser(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unauthenticated",
			body:       `{"date":"` + today + `","basic":{"emotional_state":"neutral"}}`,
			user:       nil,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeEntryRepo()
			jq := &fakeJobQueue{}
			handler := NewCheckInHandler(repo, &fakeAssessmentRepo{}, jq, nil, nil)
			router := newCheckInRouter(handler)

			req := authedRequest("POST", "/checkins", []byte(tt.body), tt.user)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.validate != nil {
				tt.validate(t, repo, jq)
			}
		})
	}
}

func TestCreateCheckInConflict(t *testing.T) {
	t.Parallel()

	user := testUser()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	repo := newFakeEntryRepo()
	repo.byDate[today.Format("2006-01-02")] = &models.DailyEntry{
		ID:     uuid.New(),
		UserID: user.ID,
		Date:   today,
		Kind:   models.EntryKindBasic,
		Basic:  &models.BasicCheckIn{EmotionalState: models.StateNeutral},
	}

	handler := NewCheckInHandler(repo, &fakeAssessmentRepo{}, &fakeJobQueue{}, nil, nil)
	router := newCheckInRouter(handler)

	body := `{"date":"` + today.Format("2006-01-02") + `","basic":{"emotional_state":"positive"}}`
	req := authedRequest("POST", "/checkins", []byte(body), user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 0 {
		t.Errorf("conflict should not create an entry")
	}
}

func TestAmendCheckIn(t *testing.T) {
	t.Parallel()

	user := testUser()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	seed := func(repo *fakeEntryRepo, date time.Time) {
		repo.byDate[date.Format("2006-01-02")] = &models.DailyEntry{
			ID:     uuid.New(),
			UserID: user.ID,
			Date:   date,
			Kind:   models.EntryKindBasic,
			Basic:  &models.BasicCheckIn{EmotionalState: models.StateNeutral},
		}
	}

	t.Run("amendable entry is rewritten and reclassified", func(t *testing.T) {
		t.Parallel()

		repo := newFakeEntryRepo()
		seed(repo, today)
		jq := &fakeJobQueue{}
		handler := NewCheckInHandler(repo, &fakeAssessmentRepo{}, jq, nil, nil)
		router := newCheckInRouter(handler)

		dateStr := today.Format("2006-01-02")
		body := `{"date":"` + dateStr + `","enhanced":{"primary_emotion":"stressed","primary_intensity":5}}`
		req := authedRequest("PATCH", "/checkins/"+dateStr, []byte(body), user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
		}
		if len(repo.updated) != 1 {
			t.Fatalf("updated %d entries, want 1", len(repo.updated))
		}
		if repo.updated[0].Kind != models.EntryKindEnhanced || repo.updated[0].Basic != nil {
			t.Errorf("amend did not switch the entry shape: %+v", repo.updated[0])
		}
		if len(jq.enqueued) != 1 {
			t.Errorf("amend should re-enqueue classification, got %d jobs", len(jq.enqueued))
		}
	})

	t.Run("locked entry rejects amendment", func(t *testing.T) {
		t.Parallel()

		repo := newFakeEntryRepo()
		seed(repo, yesterday)
		handler := NewCheckInHandler(repo, &fakeAssessmentRepo{}, &fakeJobQueue{}, nil, nil)
		router := newCheckInRouter(handler)

		dateStr := yesterday.Format("2006-01-02")
		body := `{"date":"` + dateStr + `","basic":{"emotional_state":"positive"}}`
		req := authedRequest("PATCH", "/checkins/"+dateStr, []byte(body), user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409 (body: %s)", rec.Code, rec.Body.String())
		}
		if len(repo.updated) != 0 {
			t.Errorf("locked entry must not be updated")
		}
	})

	t.Run("missing entry returns not found", func(t *testing.T) {
		t.Parallel()

		repo := newFakeEntryRepo()
		handler := NewCheckInHandler(repo, &fakeAssessmentRepo{}, &fakeJobQueue{}, nil, nil)
		router := newCheckInRouter(handler)

		dateStr := today.Format("2006-01-02")
		body := `{"date":"` + dateStr + `","basic":{"emotional_state":"positive"}}`
		req := authedRequest("PATCH", "/checkins/"+dateStr, []byte(body), user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 (body: %s)", rec.Code, rec.Body.String())
		}
	})

	t.Run("body date must match URL", func(t *testing.T) {
		t.Parallel()

		repo := newFakeEntryRepo()
		seed(repo, today)
		handler := NewCheckInHandler(repo, &fakeAssessmentRepo{}, &fakeJobQueue{}, nil, nil)
		router := newCheckInRouter(handler)

		body := `{"date":"2020-01-01","basic":{"emotional_state":"positive"}}`
		req := authedRequest("PATCH", "/checkins/"+today.Format("2006-01-02"), []byte(body), user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
		}
	})
}

func TestListCheckInsWindow(t *testing.T) {
	t.Parallel()

	user := testUser()

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{name: "default window", query: "", wantStatus: http.StatusOK},
		{name: "explicit window", query: "?from=2024-03-01&to=2024-03-31", wantStatus: http.StatusOK},
		{name: "inverted window", query: "?from=2024-03-31&to=2024-03-01", wantStatus: http.StatusBadRequest},
		{name: "oversized window", query: "?from=2024-01-01&to=2024-12-31", wantStatus: http.StatusBadRequest},
		{name: "malformed from", query: "?from=notadate", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewCheckInHandler(newFakeEntryRepo(), &fakeAssessmentRepo{}, &fakeJobQueue{}, nil, nil)
			router := newCheckInRouter(handler)

			req := authedRequest("GET", "/checkins"+tt.query, nil, user)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestGetAssessment(t *testing.T) {
	t.Parallel()

	user := testUser()

	t.Run("stored assessment is returned", func(t *testing.T) {
		t.Parallel()

		assessmentRepo := &fakeAssessmentRepo{byDate: map[string]*models.StressAssessment{
			"2024-03-11": fixtures.Assessment(user.ID, 0, 4, "work"),
		}}
		handler := NewCheckInHandler(newFakeEntryRepo(), assessmentRepo, &fakeJobQueue{}, nil, nil)
		router := newCheckInRouter(handler)

		req := authedRequest("GET", "/checkins/2024-03-11/assessment", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
		}

		var body struct {
			Data struct {
				models.StressAssessment
				Affirmation string `json:"affirmation"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Data.StressLevel != 4 {
			t.Errorf("StressLevel = %d, want 4", body.Data.StressLevel)
		}
		if body.Data.Affirmation == "" {
			t.Error("expected a stock affirmation when no generator is configured")
		}
	})

	t.Run("generated affirmation is attached", func(t *testing.T) {
		t.Parallel()

		assessmentRepo := &fakeAssessmentRepo{byDate: map[string]*models.StressAssessment{
			"2024-03-11": fixtures.Assessment(user.ID, 0, 4, "work"),
		}}
		affirmer := &fakeAffirmer{text: "You showed up today, and that counts."}
		handler := NewCheckInHandler(newFakeEntryRepo(), assessmentRepo, &fakeJobQueue{}, affirmer, nil)
		router := newCheckInRouter(handler)

		req := authedRequest("GET", "/checkins/2024-03-11/assessment", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
		}

		var body struct {
			Data struct {
				Affirmation string `json:"affirmation"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Data.Affirmation != affirmer.text {
			t.Errorf("Affirmation = %q, want %q", body.Data.Affirmation, affirmer.text)
		}
	})

	t.Run("failed generation falls back to a stock affirmation", func(t *testing.T) {
		t.Parallel()

		assessmentRepo := &fakeAssessmentRepo{byDate: map[string]*models.StressAssessment{
			"2024-03-11": fixtures.Assessment(user.ID, 0, 4, "work"),
		}}
		handler := NewCheckInHandler(newFakeEntryRepo(), assessmentRepo, &fakeJobQueue{}, &fakeAffirmer{err: errors.New("model unavailable")}, nil)
		router := newCheckInRouter(handler)

		req := authedRequest("GET", "/checkins/2024-03-11/assessment", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
		}

		var body struct {
			Data struct {
				Affirmation string `json:"affirmation"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Data.Affirmation == "" {
			t.Error("expected a stock affirmation when generation fails")
		}
	})

	t.Run("missing assessment returns not found", func(t *testing.T) {
		t.Parallel()

		handler := NewCheckInHandler(newFakeEntryRepo(), &fakeAssessmentRepo{}, &fakeJobQueue{}, nil, nil)
		router := newCheckInRouter(handler)

		req := authedRequest("GET", "/checkins/2024-03-11/assessment", nil, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 (body: %s)", rec.Code, rec.Body.String())
		}
	})
}
