package config

import "time"

// Default values for configuration fields.
const (
	// Switch defaults
	DefaultPieceValueSwitch = 62
	DefaultMoveNumberSwitch = 0

	// Logging defaults
	DefaultLogFile   = "log_headsup.txt"
	DefaultLogLevel  = "debug"
	DefaultLogFormat = "text"

	// Supervisor defaults
	DefaultQueueSize        = 64
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultReadyTimeout     = 10 * time.Second
	DefaultStopTimeout      = 10 * time.Second
	DefaultQuitTimeout      = 3 * time.Second

	// Metrics defaults
	DefaultMetricsPath = "/metrics"

	// Journal defaults
	DefaultJournalBackend       = "sqlite"
	DefaultJournalSQLitePath    = "headsup.db"
	DefaultJournalBusyTimeout   = 5 * time.Second
	DefaultJournalAsyncBuffer   = 256
	DefaultJournalWriteTimeout  = 5 * time.Second
	DefaultJournalRetentionDays = 30
	DefaultJournalPruneSchedule = "0 4 * * *"

	// Tracing defaults
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingSampler     = "always"
	DefaultTracingServiceName = "headsup"
)

// NewDefault returns a configuration holding every default. The engine paths
// are left empty.
func NewDefault() *Config {
	cfg := &Config{
		Switch: SwitchConfig{
			PieceValue: DefaultPieceValueSwitch,
			MoveNumber: DefaultMoveNumberSwitch,
		},
		Supervisor: SupervisorConfig{
			StopTimeout: DefaultStopTimeout,
		},
		Journal: JournalConfig{
			Retention: RetentionConfig{
				Days: DefaultJournalRetentionDays,
			},
		},
		Tracing: TracingConfig{
			SampleRatio: 1.0,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Fields where
// zero is meaningful (switch values, stop timeout, retention days) are only
// defaulted by NewDefault, before the file is decoded over it.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applySupervisorDefaults(&cfg.Supervisor)
	applyMetricsDefaults(&cfg.Metrics)
	applyJournalDefaults(&cfg.Journal)
	applyTracingDefaults(&cfg.Tracing)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.File == "" {
		cfg.File = DefaultLogFile
	}
	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	if cfg.Format == "" {
		cfg.Format = DefaultLogFormat
	}
}

func applySupervisorDefaults(cfg *SupervisorConfig) {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if cfg.QuitTimeout == 0 {
		cfg.QuitTimeout = DefaultQuitTimeout
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultMetricsPath
	}
}

func applyJournalDefaults(cfg *JournalConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultJournalBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultJournalBusyTimeout
	}
	if cfg.AsyncBuffer == 0 {
		cfg.AsyncBuffer = DefaultJournalAsyncBuffer
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultJournalWriteTimeout
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultJournalPruneSchedule
	}
}

func applyTracingDefaults(cfg *TracingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTracingTimeout
	}
	if cfg.Sampler == "" {
		cfg.Sampler = DefaultTracingSampler
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultTracingServiceName
	}
}
