package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention HEADSUP_FIELD (e.g., HEADSUP_ENGINE1_PATH).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file over the defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from path. Missing files are ignored.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func decodeFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	ApplyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("HEADSUP_ENGINE1_PATH"); val != "" {
		cfg.Engines.Engine1.Path = val
	}
	if val := os.Getenv("HEADSUP_ENGINE2_PATH"); val != "" {
		cfg.Engines.Engine2.Path = val
	}

	if val := os.Getenv("HEADSUP_PIECE_VALUE_SWITCH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Switch.PieceValue = i
		}
	}
	if val := os.Getenv("HEADSUP_MOVE_NUMBER_SWITCH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Switch.MoveNumber = i
		}
	}

	if val := os.Getenv("HEADSUP_LOG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Log = b
		}
	}
	if val := os.Getenv("HEADSUP_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("HEADSUP_LOG_FILE"); val != "" {
		cfg.Logging.File = val
	}

	if val := os.Getenv("HEADSUP_STOP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Supervisor.StopTimeout = d
		}
	}

	if val := os.Getenv("HEADSUP_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}

	if val := os.Getenv("HEADSUP_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if val := os.Getenv("HEADSUP_JOURNAL_SQLITE_PATH"); val != "" {
		cfg.Journal.SQLite.Path = val
	}

	if val := os.Getenv("HEADSUP_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("HEADSUP_TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
}
