package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the process-wide configuration.
	globalConfig *Config

	// configPath is the file globalConfig was loaded from.
	configPath string

	// configMutex protects globalConfig and configPath.
	configMutex sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads the configuration at path with environment overrides and
// stores it as the process-wide configuration. Subsequent calls are ignored.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configPath = path
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the process-wide configuration. Intended for tests.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig reloads the configuration from the file it was initialized
// from. On failure the current configuration stays in place.
func ReloadConfig() (*Config, error) {
	configMutex.RLock()
	path := configPath
	configMutex.RUnlock()

	if path == "" {
		return nil, fmt.Errorf("configuration not initialized: call Initialize first")
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return cfg, nil
}

// MustGetConfig returns the process-wide configuration and panics if it has
// not been initialized.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
