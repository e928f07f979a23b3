package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the journal schema.
// Timestamps are stored as Unix nanoseconds and durations as nanoseconds.
const Schema = `
-- Search records table
CREATE TABLE IF NOT EXISTS searches (
    id TEXT PRIMARY KEY,

    -- Engine
    engine TEXT NOT NULL,
    engine_name TEXT NOT NULL,

    -- Position
    fen TEXT NOT NULL,
    fullmove INTEGER NOT NULL,
    material INTEGER NOT NULL,

    -- Search
    mode TEXT NOT NULL,
    bestmove TEXT NOT NULL,
    ponder TEXT,
    info_lines INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    error TEXT,

    -- Timing
    started_at INTEGER NOT NULL,
    duration INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_searches_started_at ON searches(started_at);
CREATE INDEX IF NOT EXISTS idx_searches_engine ON searches(engine);
CREATE INDEX IF NOT EXISTS idx_searches_outcome ON searches(outcome);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const selectColumns = `id, engine, engine_name, fen, fullmove, material, mode, bestmove, ponder,
	info_lines, outcome, error, started_at, duration, recorded_at`
