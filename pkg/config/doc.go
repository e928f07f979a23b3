// Package config provides configuration management for HeadsUp.
//
// Configuration is read from a YAML file (headsup.yaml by default):
//
//	engines:
//	  engine1: {path: ./engines/a, options: {Hash: "128"}}
//	  engine2: {path: ./engines/b}
//	switch:
//	  piece_value: 62
//	  move_number: 0
//	log: true
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides (HEADSUP_ENGINE1_PATH,
//     HEADSUP_PIECE_VALUE_SWITCH, HEADSUP_LOG, ...), optionally seeded from a
//     .env file with LoadDotEnv
//  4. Validation (fails fast if invalid)
//
// A missing engine path is reported as a ValidationError matching
// ErrEnginePathMissing.
//
// # Hot Reload
//
// FileWatcher watches the configuration file with fsnotify and debounces
// bursts of events. The adapter uses it to pick up new switch thresholds
// without restarting the engines.
package config
