package config

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/session"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SRSConfig holds the scheduling parameters. Step tables are expressed in minutes
// so they can be set from environment variables.
type SRSConfig struct {
	LearningStepsMinutes   []int   `mapstructure:"learning_steps_minutes" validate:"required,min=1,dive,gt=0"`
	RelearningStepsMinutes []int   `mapstructure:"relearning_steps_minutes" validate:"required,min=1,dive,gt=0"`
	GraduatingInterval     int     `mapstructure:"graduating_interval" validate:"gte=1"`
	EasyInterval           int     `mapstructure:"easy_interval" validate:"gte=1"`
	StartingEaseFactor     float64 `mapstructure:"starting_ease_factor" validate:"gtefield=MinEaseFactor"`
	MinEaseFactor          float64 `mapstructure:"min_ease_factor" validate:"ease_floor"`
	AgainPenalty           float64 `mapstructure:"again_penalty" validate:"gte=0"`
	HardPenalty            float64 `mapstructure:"hard_penalty" validate:"gte=0"`
	EasyBonus              float64 `mapstructure:"easy_bonus" validate:"gte=0"`
	HardMultiplier         float64 `mapstructure:"hard_multiplier" validate:"gt=0"`
	EasyMultiplier         float64 `mapstructure:"easy_multiplier" validate:"gt=0"`
	MaxInterval            int     `mapstructure:"max_interval" validate:"gte=1"`
}

// SessionConfig holds the default session limits and the accuracy policy.
type SessionConfig struct {
	NewCardsLimit       int  `mapstructure:"new_cards_limit" validate:"session_limit"`
	ReviewCardsLimit    int  `mapstructure:"review_cards_limit" validate:"session_limit"`
	HardCountsAsCorrect bool `mapstructure:"hard_counts_as_correct"`
}

// Params converts the configured values into validated scheduler parameters.
func (c SRSConfig) Params() (*srs.Params, error) {
	p := &srs.Params{
		LearningSteps:      minutes(c.LearningStepsMinutes),
		RelearningSteps:    minutes(c.RelearningStepsMinutes),
		GraduatingInterval: c.GraduatingInterval,
		EasyInterval:       c.EasyInterval,
		StartingEaseFactor: c.StartingEaseFactor,
		MinEaseFactor:      c.MinEaseFactor,
		AgainPenalty:       c.AgainPenalty,
		HardPenalty:        c.HardPenalty,
		EasyBonus:          c.EasyBonus,
		HardMultiplier:     c.HardMultiplier,
		EasyMultiplier:     c.EasyMultiplier,
		MaxInterval:        c.MaxInterval,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Limits returns the configured default session limits.
func (c SessionConfig) Limits() session.Limits {
	return session.NewLimits(c.NewCardsLimit, c.ReviewCardsLimit)
}

func minutes(values []int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, m := range values {
		out[i] = time.Duration(m) * time.Minute
	}
	return out
}
