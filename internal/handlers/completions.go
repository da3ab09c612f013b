package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/mindtide/mindtide/internal/database"
	"github.com/mindtide/mindtide/internal/middleware"
	"github.com/mindtide/mindtide/internal/models"
	"github.com/mindtide/mindtide/internal/validation"
)

// CompletionHandler handles activity completion requests
type CompletionHandler struct {
	completionRepo database.CompletionRepositoryInterface
}

// NewCompletionHandler creates a new completion handler
func NewCompletionHandler(completionRepo database.CompletionRepositoryInterface) *CompletionHandler {
	return &CompletionHandler{completionRepo: completionRepo}
}

// RegisterRoutes registers completion routes on the given router
// The router should already have the /activities prefix
func (h *CompletionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/completions", h.RecordCompletion).Methods("POST")
	r.HandleFunc("/completions", h.ListCompletions).Methods("GET")
}

// RecordCompletionRequest is the record-completion payload
type RecordCompletionRequest struct {
	ActivityID string `json:"activity_id" validate:"required,min=1,max=100"`
	Date       string `json:"date" validate:"required"`
	Rating     int    `json:"rating,omitempty"`
}

// RecordCompletion records one completed wellness activity
func (h *CompletionHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req RecordCompletionRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid date, expected YYYY-MM-DD")
		return
	}

	if err := validation.ValidateIntensity("rating", req.Rating); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	completion := &models.ActivityCompletion{
		UserID:     user.ID,
		ActivityID: validation.SanitizeText(req.ActivityID),
		Date:       date.UTC(),
		Rating:     req.Rating,
	}

	if err := h.completionRepo.Create(r.Context(), completion); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to record completion")
		return
	}

	respondJSON(w, http.StatusCreated, completion)
}

// ListCompletions lists completions inside a date window (default last 30 days)
func (h *CompletionHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
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

	completions, err := h.completionRepo.ListRange(r.Context(), user.ID, from, to)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list completions")
		return
	}

	respondJSON(w, http.StatusOK, completions)
}

