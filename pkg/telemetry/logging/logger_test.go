package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Disabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log_headsup.txt")

	logger, err := New(Config{Enabled: false, File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Slog().Info("dropped")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("disabled logger must not create %s", path)
	}
	if err := logger.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_FileIsTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "log_headsup.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("previous session\n"), 0644); err != nil {
		t.Fatal(err)
	}

	logger, err := New(Config{Enabled: true, File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Slog().Debug("engine selected", "engine", "engine2")
	if err := logger.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if strings.Contains(text, "previous session") {
		t.Error("expected the log file to be truncated")
	}
	if !strings.Contains(text, "engine=engine2") {
		t.Errorf("expected text record, got %q", text)
	}
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{"debug", true, true},
		{"", true, true},
		{"info", false, true},
		{"WARNING", false, true},
		{"error", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(Config{Enabled: true, Level: tt.level, Writer: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			l := logger.Slog()
			l.Debug("debug message")
			l.Warn("warn message")

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "warn message"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Enabled: true, Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().With("component", "router").Info("active engine changed", "to", "engine1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["component"] != "router" || record["to"] != "engine1" {
		t.Errorf("unexpected record %v", record)
	}
	if record["level"] != slog.LevelInfo.String() {
		t.Errorf("unexpected level %v", record["level"])
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad level", Config{Enabled: true, Level: "loud", Writer: &bytes.Buffer{}}},
		{"bad format", Config{Enabled: true, Format: "xml", Writer: &bytes.Buffer{}}},
		{"no destination", Config{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
