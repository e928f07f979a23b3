package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"headsup-hq/headsup/pkg/cli"
	"headsup-hq/headsup/pkg/journal"
	"headsup-hq/headsup/pkg/journal/storage"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	validateFlags.handshake, validateFlags.noEngines = false, false
	journalFlags.engine, journalFlags.mode, journalFlags.outcome, journalFlags.since = "", "", "", ""
	journalFlags.limit, journalFlags.format = 20, "text"

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeConfig creates two dummy engine executables and a configuration that
// points at them. It returns the configuration path and the journal path.
func writeConfig(t *testing.T, backend string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	for _, name := range []string{"alpha", "beta"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0755))
	}
	db := filepath.Join(dir, "journal.db")

	content := fmt.Sprintf(`engines:
  engine1:
    path: %s
    options:
      Hash: "64"
      SyzygyPath: /tb
  engine2:
    path: %s
switch:
  piece_value: 50
  move_number: 40
journal:
  enabled: true
  backend: %s
  sqlite:
    path: %s
`, filepath.Join(dir, "alpha"), filepath.Join(dir, "beta"), backend, db)

	path := filepath.Join(dir, "headsup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, db
}

func TestValidateCommand(t *testing.T) {
	path, _ := writeConfig(t, "sqlite")

	out, err := executeCommand(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "piece_value=50 move_number=40")
	assert.Contains(t, out, "engine1:")
	assert.Contains(t, out, "engine2:")
}

func TestValidateCommand_MissingEngine(t *testing.T) {
	path, _ := writeConfig(t, "sqlite")
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(path), "beta")))

	_, err := executeCommand(t, "validate", "--config", path)
	require.Error(t, err)
	assert.True(t, cli.IsConfigError(err))
	assert.Contains(t, err.Error(), "engines.engine2.path")

	_, err = executeCommand(t, "validate", "--config", path, "--no-engines")
	assert.NoError(t, err)
}

func TestValidateCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headsup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("switch:\n  piece_value: -1\n"), 0644))

	_, err := executeCommand(t, "validate", "--config", path)
	require.Error(t, err)
	assert.True(t, cli.IsConfigError(err))
}

func TestValidateCommand_Handshake(t *testing.T) {
	useFakeEngines(t)
	path, _ := writeConfig(t, "sqlite")

	out, err := executeCommand(t, "validate", "--config", path, "--handshake")
	require.NoError(t, err)
	assert.Contains(t, out, `engine1 answers as "Alpha"`)
	assert.Contains(t, out, `engine2 answers as "Beta"`)
	assert.Contains(t, out, "will be skipped: SyzygyPath")
}

func seedJournal(t *testing.T, db string) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: db}, nil)
	require.NoError(t, err)
	defer store.Close()

	base := time.Now().Add(-time.Hour)
	records := []*journal.Record{
		{ID: "a", Engine: "engine1", EngineName: "Alpha", FullMove: 1, Material: 62, Mode: "movetime", BestMove: "e2e4", Outcome: "completed", StartedAt: base, Duration: 100 * time.Millisecond},
		{ID: "b", Engine: "engine2", EngineName: "Beta", FullMove: 41, Material: 30, Mode: "clock", BestMove: "g1f3", Ponder: "g8f6", Outcome: "completed", StartedAt: base.Add(time.Minute), Duration: 2 * time.Second},
		{ID: "c", Engine: "engine2", EngineName: "Beta", FullMove: 42, Material: 30, Mode: "infinite", BestMove: "0000", Outcome: "failed", Error: "engine2 died", StartedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range records {
		require.NoError(t, store.Store(context.Background(), r))
	}
}

func TestJournalList(t *testing.T) {
	path, db := writeConfig(t, "sqlite")
	seedJournal(t, db)

	out, err := executeCommand(t, "journal", "list", "--config", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "STARTED"))
	assert.Contains(t, lines[1], "failed: engine2 died")
	assert.Contains(t, lines[3], "e2e4")
}

func TestJournalList_Filters(t *testing.T) {
	path, db := writeConfig(t, "sqlite")
	seedJournal(t, db)

	out, err := executeCommand(t, "journal", "list", "--config", path,
		"--engine", "engine2", "--outcome", "completed", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, "g1f3,g8f6")
}

func TestJournalList_JSON(t *testing.T) {
	path, db := writeConfig(t, "sqlite")
	seedJournal(t, db)

	out, err := executeCommand(t, "journal", "list", "--config", path, "--limit", "1", "--format", "json")
	require.NoError(t, err)

	var records []journal.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "c", records[0].ID)
}

func TestJournalList_MemoryBackend(t *testing.T) {
	path, _ := writeConfig(t, "memory")

	_, err := executeCommand(t, "journal", "list", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory journal")
}

func TestJournalList_InvalidFlags(t *testing.T) {
	path, _ := writeConfig(t, "sqlite")

	_, err := executeCommand(t, "journal", "list", "--config", path, "--format", "xml")
	assert.Error(t, err)

	_, err = executeCommand(t, "journal", "list", "--config", path, "--since", "yesterday")
	assert.Error(t, err)
}

func TestJournalPrune(t *testing.T) {
	path, db := writeConfig(t, "sqlite")
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: db}, nil)
	require.NoError(t, err)
	old := &journal.Record{ID: "old", Engine: "engine1", Outcome: "completed", StartedAt: time.Now().AddDate(0, 0, -90)}
	recent := &journal.Record{ID: "new", Engine: "engine1", Outcome: "completed", StartedAt: time.Now()}
	require.NoError(t, store.Store(context.Background(), old))
	require.NoError(t, store.Store(context.Background(), recent))
	require.NoError(t, store.Close())

	out, err := executeCommand(t, "journal", "prune", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 1 records")
}

func TestRootRejectsArguments(t *testing.T) {
	_, err := executeCommand(t, "bogus")
	assert.Error(t, err)
}
