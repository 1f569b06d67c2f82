package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/session"
	"github.com/phrazzld/scry-study/internal/store"
)

var (
	// ErrInvalidID is returned when a path parameter is not a valid UUID.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidQuery is returned when a query parameter cannot be parsed.
	ErrInvalidQuery = errors.New("invalid query parameter")
)

// cardValidationErrors are the domain errors raised for bad card payloads.
var cardValidationErrors = []error{
	domain.ErrCardIDEmpty,
	domain.ErrCardDeckIDEmpty,
	domain.ErrCardContentEmpty,
	domain.ErrCardContentInvalid,
	domain.ErrInvalidInterval,
	domain.ErrInvalidEaseFactor,
	domain.ErrInvalidStep,
	domain.ErrInvalidState,
}

// MapErrorToStatusCode maps internal errors to HTTP status codes.
// Unknown errors are 500s.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, study.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, study.ErrSessionComplete),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, session.ErrInvalidLimits),
		errors.Is(err, study.ErrNoCards),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidQuery),
		errors.As(err, &validationErrs),
		isCardValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Internal
// details never leak; unknown errors get a generic message.
func GetSafeErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, study.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	case errors.Is(err, session.ErrInvalidTransition):
		return "Action not allowed at this point of the session"
	case errors.Is(err, study.ErrSessionComplete):
		return "Session is complete"
	case errors.Is(err, store.ErrVersionConflict):
		return "Card was modified concurrently"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"
	case errors.Is(err, domain.ErrInvalidGrade):
		return "Invalid grade"
	case errors.Is(err, session.ErrInvalidLimits):
		return "Invalid session limits"
	case errors.Is(err, study.ErrNoCards):
		return "No cards to import"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, srs.ErrInvalidDays):
		return "Days must be at least 1"
	case errors.Is(err, ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, ErrInvalidQuery):
		return "Invalid query parameter"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case isCardValidationError(err):
		return "Invalid card: " + firstCardValidationError(err).Error()
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}
	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.ActualTag()))
}

// HandleAPIError writes the error response for err. A non-empty fallback
// replaces the generic message on 500s.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

func isCardValidationError(err error) bool {
	return firstCardValidationError(err) != nil
}

func firstCardValidationError(err error) error {
	for _, target := range cardValidationErrors {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}
