package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mindtide/mindtide/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("emotional_state", validateEmotionalState); err != nil {
		panic(fmt.Sprintf("failed to register emotional_state validator: %v", err))
	}
	if err := Validate.RegisterValidation("emotion_category", validateEmotionCategory); err != nil {
		panic(fmt.Sprintf("failed to register emotion_category validator: %v", err))
	}
	if err := Validate.RegisterValidation("context_tag", validateContextTag); err != nil {
		panic(fmt.Sprintf("failed to register context_tag validator: %v", err))
	}
}

// validateEmotionalState validates that a string is a valid EmotionalState enum value
func validateEmotionalState(fl validator.FieldLevel) bool {
	return ValidateEmotionalState(fl.Field().String()) == nil
}

// validateEmotionCategory validates that a string is a known emotion category
func validateEmotionCategory(fl validator.FieldLevel) bool {
	_, ok := models.GroupOf(models.EmotionCategory(fl.Field().String()))
	return ok
}

// validateContextTag validates that a string is a known context tag
func validateContextTag(fl validator.FieldLevel) bool {
	return models.ValidContextTag(models.ContextTag(fl.Field().String()))
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateEmotionalState validates an EmotionalState string value
func ValidateEmotionalState(value string) error {
	switch models.EmotionalState(value) {
	case models.StatePositive, models.StateNeutral, models.StateNegative:
		return nil
	default:
		return fmt.Errorf("invalid emotional_state: %s (must be 'positive', 'neutral', or 'negative')", value)
	}
}

// ValidateEmotionCategory validates an EmotionCategory string value
func ValidateEmotionCategory(value string) error {
	if _, ok := models.GroupOf(models.EmotionCategory(value)); !ok {
		return fmt.Errorf("invalid emotion: %s", value)
	}
	return nil
}

// ValidateContextTag validates a ContextTag string value
func ValidateContextTag(value string) error {
	if !models.ValidContextTag(models.ContextTag(value)) {
		return fmt.Errorf("invalid context tag: %s", value)
	}
	return nil
}

// ValidateIntensity validates a 1-5 intensity or level value. Zero is
// accepted as "not reported".
func ValidateIntensity(field string, value int) error {
	if value == 0 {
		return nil
	}
	if value < 1 || value > 5 {
		return fmt.Errorf("invalid %s: %d (must be 1-5)", field, value)
	}
	return nil
}
