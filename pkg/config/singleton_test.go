package config

import (
	"os"
	"sync"
	"testing"
)

func resetGlobal() {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = nil
	configPath = ""
	initOnce = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, `
engines:
  engine1: {path: a}
  engine2: {path: b}
switch:
  piece_value: 50
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Switch.PieceValue != 50 {
		t.Errorf("expected piece value 50, got %d", cfg.Switch.PieceValue)
	}

	// A second call is ignored.
	if err := Initialize("does-not-exist.yaml"); err != nil {
		t.Errorf("expected second Initialize to be a no-op, got %v", err)
	}
}

func TestInitialize_Invalid(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "log: true\n")

	if err := Initialize(path); err == nil {
		t.Fatal("expected error for config without engines")
	}
	if GetConfig() != nil {
		t.Error("expected no config after failed initialization")
	}
}

func TestReloadConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	if _, err := ReloadConfig(); err == nil {
		t.Fatal("expected error before Initialize")
	}

	path := writeConfig(t, `
engines:
  engine1: {path: a}
  engine2: {path: b}
`)
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	updated := `
engines:
  engine1: {path: a}
  engine2: {path: b}
switch:
  piece_value: 20
  move_number: 15
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	cfg, err := ReloadConfig()
	if err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if cfg.Switch.PieceValue != 20 || cfg.Switch.MoveNumber != 15 {
		t.Errorf("unexpected switch after reload %+v", cfg.Switch)
	}
	if GetConfig() != cfg {
		t.Error("expected reloaded config to become the global config")
	}

	if err := os.WriteFile(path, []byte("engines: {}\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if _, err := ReloadConfig(); err == nil {
		t.Fatal("expected reload of invalid config to fail")
	}
	if GetConfig() != cfg {
		t.Error("failed reload must keep the previous config")
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	defer func() {
		if recover() == nil {
			t.Error("expected panic without configuration")
		}
	}()
	MustGetConfig()
}

func TestSetConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	cfg := validConfig()
	SetConfig(cfg)
	if MustGetConfig() != cfg {
		t.Error("expected SetConfig to replace the global config")
	}
}
