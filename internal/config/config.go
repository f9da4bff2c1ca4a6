// Package config loads runtime settings from .env and SALARYDASH_* variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"salarydash/internal/engine"
	"salarydash/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const prefix = "SALARYDASH_"

// DefaultDatasetURL is the published salary dataset.
const DefaultDatasetURL = "https://raw.githubusercontent.com/vqrca/dashboard_salarios_dados/refs/heads/main/dados-imersao-final.csv"

// Config holds all application configuration.
type Config struct {
	Addr         string        `validate:"required"`
	DatasetURL   string        `validate:"omitempty,url"`
	DatasetPath  string        `validate:"required_without=DatasetURL"`
	FetchTimeout time.Duration `validate:"gte=0"`

	Bins      int    `validate:"min=1,max=1000"`
	TopRoles  int    `validate:"min=1"`
	FocusRole string `validate:"required"`

	LogLevel  string `validate:"oneof=trace debug info warn warning error fatal"`
	LogFormat string `validate:"oneof=console json"`
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Named("config").Debug().Msg("no .env file found, using process environment")
	}

	return &Config{
		Addr:         getEnv("ADDR", ":8080"),
		DatasetURL:   getEnv("DATASET_URL", DefaultDatasetURL),
		DatasetPath:  getEnv("DATASET_PATH", ""),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		Bins:      getEnvInt("BINS", engine.DefaultBins),
		TopRoles:  getEnvInt("TOP_ROLES", engine.DefaultTopRoles),
		FocusRole: getEnv("FOCUS_ROLE", engine.DefaultFocusRole),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config after flags have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// Source describes where the dataset is read from.
func (c *Config) Source() engine.Source {
	return engine.Source{Path: c.DatasetPath, URL: c.DatasetURL, Timeout: c.FetchTimeout}
}

// EngineOptions returns the aggregation tuning.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{Bins: c.Bins, TopRoles: c.TopRoles, FocusRole: c.FocusRole}
}

// LoggerOptions returns the zerolog setup.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.LogLevel, Format: c.LogFormat, Service: "salarydash"}
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(prefix + key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(prefix + key))
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		logger.Named("config").Warn().Str("key", prefix+key).Str("value", val).Int("default", fallback).
			Msg("invalid int; using default")
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(prefix + key))
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logger.Named("config").Warn().Str("key", prefix+key).Str("value", val).Dur("default", fallback).
			Msg("invalid duration; using default")
		return fallback
	}
	return d
}
