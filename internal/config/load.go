package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. GARDEN_DATABASE_URL for database.url.
const EnvPrefix = "GARDEN"

// defaults lists every optional key together with its default value.
var defaults = map[string]any{
	"server.port":                    8080,
	"server.log_level":               "info",
	"database.max_open_conns":        10,
	"database.max_idle_conns":        5,
	"auth.token_lifetime_minutes":    7 * 24 * 60,
	"auth.verification_window_hours": 24,
	"auth.bcrypt_cost":               12,
	"mail.provider":                  "log",
	"mail.from_address":              "noreply@cardboard.garden",
	"mail.from_name":                 "Cardboard Garden",
	"mail.endpoint":                  "https://api.resend.com",
	"mail.link_base_url":             "http://localhost:5173",
	"task.worker_count":              2,
	"task.queue_size":                100,
	"task.cleanup_interval_minutes":  60,
}

// requiredKeys have no default but still have to be bound so that
// AutomaticEnv picks them up during Unmarshal.
var requiredKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"mail.api_key",
}

// Load configuration from environment variables and optionally a config.yaml
// file in the working directory. Environment variables take precedence over
// values from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
