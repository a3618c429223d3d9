// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	defaultServiceName = "libralend-circulation"
)

// Config holds the ambient settings of a libralend binary. Lending behaviour is not configurable.
type Config struct {
	LogLevel     slog.Level
	LogFormat    string
	OTLPEndpoint string
	ServiceName  string
}

// Load reads LOG_LEVEL, LOG_FORMAT, OTEL_EXPORTER_OTLP_ENDPOINT and SERVICE_NAME.
// Invalid values are replaced by their defaults and reported in the returned error.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:     slog.LevelInfo,
		LogFormat:    FormatText,
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("SERVICE_NAME", defaultServiceName),
	}

	var errs []error

	if level := getEnv("LOG_LEVEL", ""); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			cfg.LogLevel = slog.LevelInfo
			errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err))
		}
	}

	switch format := strings.ToLower(getEnv("LOG_FORMAT", FormatText)); format {
	case FormatText, FormatJSON:
		cfg.LogFormat = format
	default:
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q: want %s or %s", format, FormatText, FormatJSON))
	}

	return cfg, errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
