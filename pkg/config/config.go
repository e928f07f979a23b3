package config

import "time"

// Config is the root configuration structure for HeadsUp.
type Config struct {
	// Engines holds the two backend engines.
	Engines EnginesConfig `yaml:"engines"`

	// Switch holds the thresholds of the engine selection rule.
	Switch SwitchConfig `yaml:"switch"`

	// Log enables the log file. When false all logs are discarded.
	// Default: false
	Log bool `yaml:"log"`

	// Logging configures the log file when Log is true.
	Logging LoggingConfig `yaml:"logging"`

	// Supervisor configures the per-engine workers.
	Supervisor SupervisorConfig `yaml:"supervisor"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Journal configures the search journal.
	Journal JournalConfig `yaml:"journal"`

	// Tracing configures OpenTelemetry spans for searches.
	Tracing TracingConfig `yaml:"tracing"`

	// Watch reloads the switch thresholds when the configuration file
	// changes.
	// Default: false
	Watch bool `yaml:"watch"`
}

// EnginesConfig holds engine1 and engine2.
type EnginesConfig struct {
	// Engine1 is backend A, used in the opening and rich middlegames.
	Engine1 EngineConfig `yaml:"engine1"`

	// Engine2 is backend B, used everywhere else.
	Engine2 EngineConfig `yaml:"engine2"`
}

// EngineConfig describes one backend executable.
type EngineConfig struct {
	// Path is the engine executable. Required.
	Path string `yaml:"path"`

	// Args are passed to the executable.
	Args []string `yaml:"args"`

	// Dir is the working directory of the engine process.
	Dir string `yaml:"dir"`

	// Options are sent as setoption after the handshake. Options the engine
	// does not declare are skipped.
	Options map[string]string `yaml:"options"`
}

// SwitchConfig holds the selection thresholds. Engine1 is chosen when the
// full-move number is below MoveNumber and the material is above PieceValue.
type SwitchConfig struct {
	// PieceValue is piece_value_switch.
	// Default: 62
	PieceValue int `yaml:"piece_value"`

	// MoveNumber is move_number_switch.
	// Default: 0
	MoveNumber int `yaml:"move_number"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// File is the log file, truncated on start.
	// Default: "log_headsup.txt"
	File string `yaml:"file"`

	// Level is the minimum log level: "debug", "info", "warn" or "error".
	// Default: "debug"
	Level string `yaml:"level"`

	// Format is "text" or "json".
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes the source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// SupervisorConfig configures the engine workers.
type SupervisorConfig struct {
	// QueueSize is the capacity of each engine's command queue.
	// Default: 64
	QueueSize int `yaml:"queue_size"`

	// HandshakeTimeout bounds the wait for uciok.
	// Default: 10s
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`

	// ReadyTimeout bounds the wait for readyok.
	// Default: 10s
	ReadyTimeout time.Duration `yaml:"ready_timeout"`

	// StopTimeout bounds the wait for bestmove after stop. Zero disables the
	// timeout.
	// Default: 10s
	StopTimeout time.Duration `yaml:"stop_timeout"`

	// QuitTimeout is how long an engine may take to exit before it is
	// killed.
	// Default: 3s
	QuitTimeout time.Duration `yaml:"quit_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// ListenAddress serves /metrics when not empty (e.g. "127.0.0.1:9464").
	// Default: "" (disabled)
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path of the metrics handler.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// JournalConfig configures the search journal.
type JournalConfig struct {
	// Enabled turns recording on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the capacity of the recorder queue.
	// Default: 256
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single store operation.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention configures pruning of old records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file.
	// Default: "headsup.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long a writer waits for a lock.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days keeps records for this many days. Zero keeps them forever.
	// Default: 30
	Days int `yaml:"days"`

	// MaxRecords caps the number of records. Zero means no cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for pruning.
	// Default: "0 4 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	// Enabled exports one span per search.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds a single export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Sampler is "always", "never" or "ratio".
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the "ratio" sampler, between 0 and 1.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service.name resource attribute.
	// Default: "headsup"
	ServiceName string `yaml:"service_name"`
}
