package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mindtide/mindtide/internal/database"
	"github.com/mindtide/mindtide/internal/middleware"
	"github.com/mindtide/mindtide/internal/models"
	"github.com/mindtide/mindtide/internal/queue"
	"github.com/mindtide/mindtide/internal/services/ai"
	"github.com/mindtide/mindtide/internal/validation"
	"go.uber.org/zap"
)

const (
	// MaxNotesLength is the maximum length for check-in notes
	MaxNotesLength = 4000
	// MaxSecondaryEmotions caps how many secondary emotions a check-in carries
	MaxSecondaryEmotions = 5
	// MaxContextTags caps how many context tags a check-in carries
	MaxContextTags = 8
	// DefaultListDays is the default window for listing check-ins
	DefaultListDays = 30
	// MaxListDays is the largest allowed listing window
	MaxListDays = 90

	dateLayout = "2006-01-02"
)

// CheckInHandler handles daily check-in requests
type CheckInHandler struct {
	entryRepo      database.EntryRepositoryInterface
	assessmentRepo database.AssessmentRepositoryInterface
	jobQueue       queue.JobQueue
	affirmer       ai.AffirmationGenerator
	logger         *zap.Logger
}

// NewCheckInHandler creates a new check-in handler. affirmer may be nil,
// in which case assessment responses carry a stock affirmation.
func NewCheckInHandler(entryRepo database.EntryRepositoryInterface, assessmentRepo database.AssessmentRepositoryInterface, jobQueue queue.JobQueue, affirmer ai.AffirmationGenerator, logger *zap.Logger) *CheckInHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInHandler{
		entryRepo:      entryRepo,
		assessmentRepo: assessmentRepo,
		jobQueue:       jobQueue,
		affirmer:       affirmer,
		logger:         logger,
	}
}

// RegisterRoutes registers check-in routes on the given router
// The router should already have the /checkins prefix
func (h *CheckInHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCheckIns).Methods("GET")
	r.HandleFunc("", h.CreateCheckIn).Methods("POST")
	r.HandleFunc("/{date}", h.GetCheckIn).Methods("GET")
	r.HandleFunc("/{date}", h.AmendCheckIn).Methods("PATCH")
	r.HandleFunc("/{date}/assessment", h.GetAssessment).Methods("GET")
}

// CheckInRequest is the create/amend payload. Exactly one of Basic or
// Enhanced must be set.
type CheckInRequest struct {
	Date     string                  `json:"date" validate:"required"`
	Basic    *models.BasicCheckIn    `json:"basic,omitempty"`
	Enhanced *models.EnhancedCheckIn `json:"enhanced,omitempty"`
	Notes    string                  `json:"notes,omitempty"`
}

// AssessmentResponse pairs the stored assessment with a supportive line
type AssessmentResponse struct {
	*models.StressAssessment
	Affirmation string `json:"affirmation"`
}

// ListCheckInsResponse is the response for listing check-ins
type ListCheckInsResponse struct {
	Entries []*models.DailyEntry `json:"entries"`
	From    string               `json:"from"`
	To      string               `json:"to"`
}

// CreateCheckIn records today's (or a given day's) check-in and enqueues
// classification for it.
func (h *CheckInHandler) CreateCheckIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	req, date, ok := h.decodeCheckInRequest(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	existing, err := h.entryRepo.GetByUserAndDate(ctx, user.ID, date)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to check existing entry")
		return
	}
	if existing != nil {
		respondJSONError(w, http.StatusConflict, "Conflict", "A check-in already exists for this date; amend it instead")
		return
	}

	entry := &models.DailyEntry{
		ID:       uuid.New(),
		UserID:   user.ID,
		Date:     date,
		Notes:    req.Notes,
		Basic:    req.Basic,
		Enhanced: req.Enhanced,
	}
	if req.Enhanced != nil {
		entry.Kind = models.EntryKindEnhanced
	} else {
		entry.Kind = models.EntryKindBasic
	}

	if err := h.entryRepo.Create(ctx, entry); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create check-in")
		return
	}

	h.enqueueClassification(r, entry)
	respondJSON(w, http.StatusCreated, entry)
}

// AmendCheckIn rewrites an existing entry. Entries lock at the next-day
// rollover and cannot be amended afterwards.
func (h *CheckInHandler) AmendCheckIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	date, ok := parseDatePath(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	entry, err := h.entryRepo.GetByUserAndDate(ctx, user.ID, date)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load check-in")
		return
	}
	if entry == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No check-in for this date")
		return
	}

	if !entry.Amendable(time.Now().UTC()) {
		respondJSONError(w, http.StatusConflict, "Conflict", "Check-in is locked; entries cannot be amended after the day rolls over")
		return
	}

	req, reqDate, ok := h.decodeCheckInRequest(w, r)
	if !ok {
		return
	}
	if !reqDate.Equal(date) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Date in body does not match URL")
		return
	}

	entry.Basic = req.Basic
	entry.Enhanced = req.Enhanced
	entry.Notes = req.Notes
	if req.Enhanced != nil {
		entry.Kind = models.EntryKindEnhanced
	} else {
		entry.Kind = models.EntryKindBasic
	}

	if err := h.entryRepo.Update(ctx, entry); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to amend check-in")
		return
	}

	// Amending re-runs classification so the assessment tracks the entry.
	h.enqueueClassification(r, entry)
	respondJSON(w, http.StatusOK, entry)
}

// GetCheckIn retrieves one day's entry
func (h *CheckInHandler) GetCheckIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	date, ok := parseDatePath(w, r)
	if !ok {
		return
	}

	entry, err := h.entryRepo.GetByUserAndDate(r.Context(), user.ID, date)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load check-in")
		return
	}
	if entry == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No check-in for this date")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// ListCheckIns lists entries inside a date window (default last 30 days)
func (h *CheckInHandler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -(DefaultListDays - 1))

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid from date, expected YYYY-MM-DD")
			return
		}
		from = parsed.UTC()
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = parsed.UTC()
	}

	if to.Before(from) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "to must not precede from")
		return
	}
	if to.Sub(from) > time.Duration(MaxListDays)*24*time.Hour {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Window exceeds %d days", MaxListDays))
		return
	}

	entries, err := h.entryRepo.ListRange(r.Context(), user.ID, from, to)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list check-ins")
		return
	}

	respondJSON(w, http.StatusOK, ListCheckInsResponse{
		Entries: entries,
		From:    from.Format(dateLayout),
		To:      to.Format(dateLayout),
	})
}

// GetAssessment retrieves the stored stress assessment for one day
func (h *CheckInHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	date, ok := parseDatePath(w, r)
	if !ok {
		return
	}

	assessment, err := h.assessmentRepo.GetByUserAndDate(r.Context(), user.ID, date)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load assessment")
		return
	}
	if assessment == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No assessment for this date yet")
		return
	}

	respondJSON(w, http.StatusOK, AssessmentResponse{
		StressAssessment: assessment,
		Affirmation:      ai.AffirmationOrDefault(r.Context(), h.affirmer, assessment, h.logger),
	})
}

// decodeCheckInRequest decodes, sanitizes and validates the shared
// create/amend payload. Responds with the error itself when invalid.
func (h *CheckInHandler) decodeCheckInRequest(w http.ResponseWriter, r *http.Request) (*CheckInRequest, time.Time, bool) {
	var req CheckInRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return nil, time.Time{}, false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return nil, time.Time{}, false
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid date, expected YYYY-MM-DD")
		return nil, time.Time{}, false
	}
	date = date.UTC()

	if (req.Basic == nil) == (req.Enhanced == nil) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Exactly one of basic or enhanced must be provided")
		return nil, time.Time{}, false
	}

	if req.Basic != nil {
		if err := validation.ValidateEmotionalState(string(req.Basic.EmotionalState)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return nil, time.Time{}, false
		}
	}

	if req.Enhanced != nil {
		if ok := h.validateEnhanced(w, req.Enhanced); !ok {
			return nil, time.Time{}, false
		}
	}

	req.Notes = validation.SanitizeText(req.Notes)
	if len(req.Notes) > MaxNotesLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Notes exceed maximum length of %d characters", MaxNotesLength))
		return nil, time.Time{}, false
	}

	return &req, date, true
}

func (h *CheckInHandler) validateEnhanced(w http.ResponseWriter, in *models.EnhancedCheckIn) bool {
	if err := validation.ValidateEmotionCategory(string(in.PrimaryEmotion)); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	if err := validation.ValidateIntensity("primary_intensity", int(in.PrimaryIntensity)); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	if err := validation.ValidateIntensity("energy_level", in.EnergyLevel); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	if err := validation.ValidateIntensity("stress_level", in.StressLevel); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	if len(in.SecondaryEmotions) > MaxSecondaryEmotions {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("At most %d secondary emotions are allowed", MaxSecondaryEmotions))
		return false
	}
	for _, secondary := range in.SecondaryEmotions {
		if err := validation.ValidateEmotionCategory(string(secondary.Emotion)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return false
		}
		if err := validation.ValidateIntensity("secondary intensity", int(secondary.Intensity)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return false
		}
	}
	if len(in.ContextTags) > MaxContextTags {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("At most %d context tags are allowed", MaxContextTags))
		return false
	}
	for _, tag := range in.ContextTags {
		if err := validation.ValidateContextTag(string(tag)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return false
		}
	}
	return true
}

// enqueueClassification queues the async stress classification. Failure
// to enqueue is logged, not surfaced: the check-in itself succeeded and
// classification can be retried.
func (h *CheckInHandler) enqueueClassification(r *http.Request, entry *models.DailyEntry) {
	if h.jobQueue == nil {
		return
	}
	job := queue.NewClassificationJob(entry.UserID, entry.ID)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("classification_enqueue_failed",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
	}
}

// parseDatePath parses the {date} path variable
func parseDatePath(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	vars := mux.Vars(r)
	date, err := time.Parse(dateLayout, vars["date"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date.UTC(), true
}
