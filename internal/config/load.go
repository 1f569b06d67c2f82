package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/session"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SCRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := srs.RegisterValidations(validate); err != nil {
		return nil, fmt.Errorf("failed to register validations: %w", err)
	}
	session.RegisterValidations(validate)
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.SRS.Params(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("srs.learning_steps_minutes", []int{1, 10})
	v.SetDefault("srs.relearning_steps_minutes", []int{10})
	v.SetDefault("srs.graduating_interval", 1)
	v.SetDefault("srs.easy_interval", 4)
	v.SetDefault("srs.starting_ease_factor", 2.5)
	v.SetDefault("srs.min_ease_factor", 1.3)
	v.SetDefault("srs.again_penalty", 0.20)
	v.SetDefault("srs.hard_penalty", 0.15)
	v.SetDefault("srs.easy_bonus", 0.15)
	v.SetDefault("srs.hard_multiplier", 1.2)
	v.SetDefault("srs.easy_multiplier", 1.3)
	v.SetDefault("srs.max_interval", 36500)

	v.SetDefault("session.new_cards_limit", 20)
	v.SetDefault("session.review_cards_limit", 200)
	v.SetDefault("session.hard_counts_as_correct", false)
}

// bindEnvs registers keys that have no default so AutomaticEnv picks them up
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	_ = v.BindEnv("database.url")
}
