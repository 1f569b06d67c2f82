package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-study/internal/domain"
)

// ErrInvalidParams is returned when a Params value fails validation.
var ErrInvalidParams = errors.New("invalid srs params")

// EaseFloorTag is the validation tag that rejects ease factors below
// domain.MinEaseFactor, the floor every stored card is checked against.
const EaseFloorTag = "ease_floor"

var validate = func() *validator.Validate {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		// ALLOW-PANIC: Registering a static tag only fails on a programming error
		panic(err)
	}
	return v
}()

// RegisterValidations adds the scheduler's custom tags to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(EaseFloorTag, func(fl validator.FieldLevel) bool {
		return fl.Field().Float() >= domain.MinEaseFactor
	})
}

// Params defines all configurable parameters for the scheduling algorithm.
//
// A Params value is treated as immutable once handed to a Scheduler: the
// scheduler keeps its own copy, so per-deck tuning means building another
// Scheduler rather than editing shared state.
type Params struct {
	// Sub-day step tables. Learning applies to New/Learning cards,
	// relearning to cards that lapsed out of Review.
	LearningSteps   []time.Duration `validate:"min=1,dive,gt=0"`
	RelearningSteps []time.Duration `validate:"min=1,dive,gt=0"`

	// Graduation intervals in days.
	GraduatingInterval int `validate:"gte=1"`
	EasyInterval       int `validate:"gte=1"`

	// Ease factor limits and adjustments.
	StartingEaseFactor float64 `validate:"gtefield=MinEaseFactor"`
	MinEaseFactor      float64 `validate:"ease_floor"`
	AgainPenalty       float64 `validate:"gte=0"`
	HardPenalty        float64 `validate:"gte=0"`
	EasyBonus          float64 `validate:"gte=0"`

	// Review interval multipliers.
	HardMultiplier float64 `validate:"gt=0"`
	EasyMultiplier float64 `validate:"gt=0"`

	// Upper bound for any interval, in days.
	MaxInterval int `validate:"gtefield=EasyInterval,gtefield=GraduatingInterval"`
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	LearningSteps   []time.Duration
	RelearningSteps []time.Duration

	GraduatingInterval int
	EasyInterval       int

	StartingEaseFactor float64
	MinEaseFactor      float64
	AgainPenalty       float64
	HardPenalty        float64
	EasyBonus          float64

	HardMultiplier float64
	EasyMultiplier float64

	MaxInterval int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		LearningSteps:   []time.Duration{time.Minute, 10 * time.Minute},
		RelearningSteps: []time.Duration{10 * time.Minute},

		GraduatingInterval: 1,
		EasyInterval:       4,

		StartingEaseFactor: domain.DefaultEaseFactor,
		MinEaseFactor:      domain.MinEaseFactor,
		AgainPenalty:       0.20,
		HardPenalty:        0.15,
		EasyBonus:          0.15,

		HardMultiplier: 1.2,
		EasyMultiplier: 1.3,

		MaxInterval: 36500,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.LearningSteps) > 0 {
		params.LearningSteps = append([]time.Duration(nil), config.LearningSteps...)
	}
	if len(config.RelearningSteps) > 0 {
		params.RelearningSteps = append([]time.Duration(nil), config.RelearningSteps...)
	}

	if config.GraduatingInterval > 0 {
		params.GraduatingInterval = config.GraduatingInterval
	}
	if config.EasyInterval > 0 {
		params.EasyInterval = config.EasyInterval
	}

	if config.StartingEaseFactor > 0 {
		params.StartingEaseFactor = config.StartingEaseFactor
	}
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.AgainPenalty > 0 {
		params.AgainPenalty = config.AgainPenalty
	}
	if config.HardPenalty > 0 {
		params.HardPenalty = config.HardPenalty
	}
	if config.EasyBonus > 0 {
		params.EasyBonus = config.EasyBonus
	}

	if config.HardMultiplier > 0 {
		params.HardMultiplier = config.HardMultiplier
	}
	if config.EasyMultiplier > 0 {
		params.EasyMultiplier = config.EasyMultiplier
	}

	if config.MaxInterval > 0 {
		params.MaxInterval = config.MaxInterval
	}

	return params
}

// Validate checks the params against their struct constraints.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// clone returns a copy that shares no slices with p.
func (p *Params) clone() *Params {
	c := *p
	c.LearningSteps = append([]time.Duration(nil), p.LearningSteps...)
	c.RelearningSteps = append([]time.Duration(nil), p.RelearningSteps...)
	return &c
}

// stepsFor returns the step table that governs a card in the given state.
func (p *Params) stepsFor(state domain.CardState) []time.Duration {
	if state == domain.StateRelearning {
		return p.RelearningSteps
	}
	return p.LearningSteps
}
