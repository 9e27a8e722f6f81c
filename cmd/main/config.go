package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"

	"github.com/CTAG07/titleforge/pkg/titlegen"
	"github.com/CTAG07/titleforge/pkg/validation"
)

// Config is the top-level configuration of the titleforge binary.
type Config struct {
	LogLevel string `json:"log_level" validate:"oneof=debug info warn error"`
	// DatabasePath is the data source of the SQLite model store.
	DatabasePath string `json:"database_path" validate:"required"`
	// VocabularyPath optionally points at an existing JSON file replacing
	// the template word lists.
	VocabularyPath string           `json:"vocabulary_path" validate:"omitempty,file"`
	Generation     *titlegen.Config `json:"generation_config" validate:"required"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	gen := titlegen.DefaultConfig()
	return &Config{
		LogLevel:     "info",
		DatabasePath: "./data/titleforge.db",
		Generation:   &gen,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Keys
// missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The defaults are still usable without the file.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration, including the generation settings.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// newLogger builds the binary's text logger for the given level name.
// Unknown names fall back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
