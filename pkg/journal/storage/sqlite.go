package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"headsup-hq/headsup/pkg/journal"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections. Pragmas are
	// per connection, so the default keeps a single one.
	// Default: 1
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging so `headsup journal list` can read
	// while the adapter writes.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "headsup.db",
		MaxOpenConns: 1,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements journal.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

var _ journal.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens the database and creates the schema if needed.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "journal.storage.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." && config.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, journal.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets the pragmas and creates the schema.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return journal.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return journal.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return journal.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return journal.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return journal.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return journal.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *journal.Record) error {
	query := `
		INSERT INTO searches (
			id, engine, engine_name,
			fen, fullmove, material,
			mode, bestmove, ponder, info_lines, outcome, error,
			started_at, duration, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Engine, record.EngineName,
		record.FEN, record.FullMove, record.Material,
		record.Mode, record.BestMove, nullString(record.Ponder), record.InfoLines, record.Outcome, nullString(record.Error),
		record.StartedAt.UnixNano(), int64(record.Duration), record.RecordedAt.UnixNano(),
	)
	if err != nil {
		return journal.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *journal.Query) ([]*journal.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM searches"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sortOrder := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY started_at %s, id %s", sortOrder, sortOrder)

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	} else {
		sqlQuery += " LIMIT -1"
	}
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*journal.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, journal.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *journal.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM searches"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, journal.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes records matching the query filters.
func (s *SQLiteStorage) Delete(ctx context.Context, query *journal.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM searches"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return journal.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause (without the keyword) from the
// query filters.
func buildWhereClause(query *journal.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, query.EndTime.UnixNano())
	}
	if query.Engine != "" {
		conditions = append(conditions, "engine = ?")
		args = append(args, query.Engine)
	}
	if query.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, query.Mode)
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, query.Outcome)
	}

	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*journal.Record, error) {
	var record journal.Record
	var ponder, errorVal sql.NullString
	var startedAt, duration, recordedAt int64

	err := rows.Scan(
		&record.ID, &record.Engine, &record.EngineName,
		&record.FEN, &record.FullMove, &record.Material,
		&record.Mode, &record.BestMove, &ponder, &record.InfoLines, &record.Outcome, &errorVal,
		&startedAt, &duration, &recordedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Ponder = ponder.String
	record.Error = errorVal.String
	record.StartedAt = time.Unix(0, startedAt)
	record.Duration = time.Duration(duration)
	record.RecordedAt = time.Unix(0, recordedAt)

	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
