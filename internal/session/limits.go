package session

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MaxLimit is the largest accepted value for either session limit.
const MaxLimit = 9999

// LimitTag is a validation alias for a session limit: 0..MaxLimit.
const LimitTag = "session_limit"

var validate = func() *validator.Validate {
	v := validator.New()
	RegisterValidations(v)
	return v
}()

// RegisterValidations adds LimitTag to v, built from MaxLimit.
func RegisterValidations(v *validator.Validate) {
	v.RegisterAlias(LimitTag, fmt.Sprintf("gte=0,lte=%d", MaxLimit))
}

// Limits caps how many cards of each capped tier enter a session.
// Due learning cards are never capped.
type Limits struct {
	NewCardsLimit    int `json:"new_cards_limit" validate:"session_limit"`
	ReviewCardsLimit int `json:"review_cards_limit" validate:"session_limit"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{NewCardsLimit: 20, ReviewCardsLimit: 200}
}

// NewLimits builds Limits, clamping each value into [0, MaxLimit].
func NewLimits(newCards, reviewCards int) Limits {
	return Limits{
		NewCardsLimit:    clampLimit(newCards),
		ReviewCardsLimit: clampLimit(reviewCards),
	}
}

// Validate reports whether both limits are within range.
func (l Limits) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLimits, err)
	}
	return nil
}

func clampLimit(v int) int {
	return min(max(v, 0), MaxLimit)
}
