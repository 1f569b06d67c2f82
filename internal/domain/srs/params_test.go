package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	require.NoError(t, params.Validate())
	assert.Equal(t, []time.Duration{time.Minute, 10 * time.Minute}, params.LearningSteps)
	assert.Equal(t, []time.Duration{10 * time.Minute}, params.RelearningSteps)
	assert.Equal(t, 1, params.GraduatingInterval)
	assert.Equal(t, 4, params.EasyInterval)
	assert.Equal(t, 2.5, params.StartingEaseFactor)
	assert.Equal(t, 1.3, params.MinEaseFactor)
	assert.Equal(t, 0.20, params.AgainPenalty)
	assert.Equal(t, 0.15, params.HardPenalty)
	assert.Equal(t, 0.15, params.EasyBonus)
	assert.Equal(t, 1.2, params.HardMultiplier)
	assert.Equal(t, 1.3, params.EasyMultiplier)
	assert.Equal(t, 36500, params.MaxInterval)
}

func TestNewParams(t *testing.T) {
	t.Parallel()
	steps := []time.Duration{5 * time.Minute}
	params := NewParams(ParamsConfig{
		LearningSteps:      steps,
		GraduatingInterval: 2,
		EasyInterval:       6,
		HardMultiplier:     1.1,
		MaxInterval:        365,
	})

	assert.Equal(t, steps, params.LearningSteps)
	assert.Equal(t, 2, params.GraduatingInterval)
	assert.Equal(t, 6, params.EasyInterval)
	assert.Equal(t, 1.1, params.HardMultiplier)
	assert.Equal(t, 365, params.MaxInterval)

	// Untouched fields keep their defaults.
	assert.Equal(t, 1.3, params.EasyMultiplier)
	assert.Equal(t, []time.Duration{10 * time.Minute}, params.RelearningSteps)

	// The config's slice is copied, not shared.
	steps[0] = time.Hour
	assert.Equal(t, 5*time.Minute, params.LearningSteps[0])
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(p *Params)
	}{
		{name: "no learning steps", mutate: func(p *Params) { p.LearningSteps = nil }},
		{name: "no relearning steps", mutate: func(p *Params) { p.RelearningSteps = []time.Duration{} }},
		{name: "zero step", mutate: func(p *Params) { p.LearningSteps = []time.Duration{0} }},
		{name: "zero graduating interval", mutate: func(p *Params) { p.GraduatingInterval = 0 }},
		{name: "min ease below one", mutate: func(p *Params) { p.MinEaseFactor = 0.9 }},
		{name: "min ease below card floor", mutate: func(p *Params) { p.MinEaseFactor = 1.1 }},
		{name: "starting ease below min", mutate: func(p *Params) { p.StartingEaseFactor = 1.2 }},
		{name: "negative penalty", mutate: func(p *Params) { p.AgainPenalty = -0.1 }},
		{name: "zero hard multiplier", mutate: func(p *Params) { p.HardMultiplier = 0 }},
		{name: "max interval below easy interval", mutate: func(p *Params) { p.MaxInterval = 3 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := NewDefaultParams()
			tc.mutate(params)
			assert.ErrorIs(t, params.Validate(), ErrInvalidParams)
		})
	}

	var nilParams *Params
	assert.ErrorIs(t, nilParams.Validate(), ErrInvalidParams)
}

func TestEaseFloorMatchesCardValidation(t *testing.T) {
	t.Parallel()

	params := NewDefaultParams()
	params.MinEaseFactor = domain.MinEaseFactor
	require.NoError(t, params.Validate())

	// Every card the scheduler can produce at the lowest accepted floor must
	// still pass card validation.
	s, err := NewScheduler(params, nil)
	require.NoError(t, err)

	card := domain.Card{
		ID:         uuid.New(),
		DeckID:     uuid.New(),
		State:      domain.StateReview,
		EaseFactor: domain.MinEaseFactor,
		Interval:   10,
		DueDate:    t0,
		Content:    []byte(`{"front":"q","back":"a"}`),
	}
	next, err := s.NextState(card, domain.GradeAgain, t0)
	require.NoError(t, err)
	assert.Equal(t, domain.MinEaseFactor, next.EaseFactor)
	assert.NoError(t, next.Validate())

	params.MinEaseFactor = 1.1
	params.StartingEaseFactor = 2.5
	_, err = NewScheduler(params, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
