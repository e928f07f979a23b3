package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefault()
	cfg.Engines.Engine1.Path = "engine-a"
	cfg.Engines.Engine2.Path = "engine-b"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:   "valid defaults",
			modify: func(*Config) {},
		},
		{
			name:      "missing engine1 path",
			modify:    func(c *Config) { c.Engines.Engine1.Path = "  " },
			wantField: "engines.engine1.path",
		},
		{
			name:      "negative piece value",
			modify:    func(c *Config) { c.Switch.PieceValue = -1 },
			wantField: "switch.piece_value",
		},
		{
			name:      "negative move number",
			modify:    func(c *Config) { c.Switch.MoveNumber = -3 },
			wantField: "switch.move_number",
		},
		{
			name:      "unknown log level",
			modify:    func(c *Config) { c.Logging.Level = "verbose" },
			wantField: "logging.level",
		},
		{
			name:      "unknown log format",
			modify:    func(c *Config) { c.Logging.Format = "xml" },
			wantField: "logging.format",
		},
		{
			name:      "zero queue",
			modify:    func(c *Config) { c.Supervisor.QueueSize = 0 },
			wantField: "supervisor.queue_size",
		},
		{
			name:      "negative stop timeout",
			modify:    func(c *Config) { c.Supervisor.StopTimeout = -1 },
			wantField: "supervisor.stop_timeout",
		},
		{
			name:      "bad metrics address",
			modify:    func(c *Config) { c.Metrics.ListenAddress = "9464" },
			wantField: "metrics.listen_address",
		},
		{
			name:      "unknown journal backend",
			modify:    func(c *Config) { c.Journal.Backend = "postgres" },
			wantField: "journal.backend",
		},
		{
			name:      "bad prune schedule",
			modify:    func(c *Config) { c.Journal.Retention.PruneSchedule = "every day" },
			wantField: "journal.retention.prune_schedule",
		},
		{
			name:      "empty option name",
			modify:    func(c *Config) { c.Engines.Engine2.Options = map[string]string{"": "1"} },
			wantField: "engines.engine2.options",
		},
		{
			name:   "tracing disabled ignores endpoint",
			modify: func(c *Config) { c.Tracing.Endpoint = "nowhere" },
		},
		{
			name: "bad tracing endpoint",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Endpoint = "nowhere"
			},
			wantField: "tracing.endpoint",
		},
		{
			name: "sample ratio out of range",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Sampler = "ratio"
				c.Tracing.SampleRatio = 1.5
			},
			wantField: "tracing.sample_ratio",
		},
		{
			name: "unknown sampler",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Sampler = "sometimes"
			},
			wantField: "tracing.sampler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := NewDefault()

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrEnginePathMissing) {
		t.Errorf("expected ErrEnginePathMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "2 errors") {
		t.Errorf("expected both engine paths reported, got %v", err)
	}
}

func TestCheckEngines(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "engine")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to write engine: %v", err)
	}

	cfg := validConfig()
	cfg.Engines.Engine1.Path = exe
	cfg.Engines.Engine2.Path = exe
	if err := CheckEngines(cfg); err != nil {
		t.Fatalf("expected engines to be found, got %v", err)
	}

	cfg.Engines.Engine2.Path = dir
	err := CheckEngines(cfg)
	if err == nil || !strings.Contains(err.Error(), "engines.engine2.path") {
		t.Errorf("expected directory to be rejected, got %v", err)
	}

	cfg.Engines.Engine1.Path = filepath.Join(dir, "missing")
	var verr ValidationError
	if !errors.As(CheckEngines(cfg), &verr) || len(verr.Errors) != 2 {
		t.Errorf("expected two field errors, got %v", verr)
	}
}
