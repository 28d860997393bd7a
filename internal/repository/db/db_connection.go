package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens/creates the SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const schemaProcessSamples = `
CREATE TABLE IF NOT EXISTS process_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts INTEGER NOT NULL,
    soak_temp REAL,
    soak_ph REAL,
    soak_level REAL,
    fresh_level REAL,
    heat_level REAL,
    pump1 INTEGER NOT NULL,
    pump2 INTEGER NOT NULL,
    pump3 INTEGER NOT NULL,
    valve_fresh INTEGER NOT NULL,
    valve_heat INTEGER NOT NULL,
    lift_state TEXT NOT NULL,
    lift_estimated_mm REAL,
    heater_on INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_process_samples_ts ON process_samples(ts);
`

const schemaSystemSamples = `
CREATE TABLE IF NOT EXISTS system_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts INTEGER NOT NULL,
    host TEXT,
    gpio_backend TEXT,
    cpu_percent REAL,
    memory_percent REAL,
    disk_percent REAL,
    cpu_temp REAL,
    uptime_sec INTEGER,
    load1 REAL,
    load5 REAL,
    load15 REAL
);
CREATE INDEX IF NOT EXISTS idx_system_samples_ts ON system_samples(ts);
`

const schemaControlEvents = `
CREATE TABLE IF NOT EXISTS control_events (
    id TEXT PRIMARY KEY,
    ts INTEGER NOT NULL,
    source TEXT NOT NULL,
    target TEXT NOT NULL,
    prev_value TEXT,
    next_value TEXT,
    ok INTEGER NOT NULL,
    message TEXT
);
CREATE INDEX IF NOT EXISTS idx_control_events_ts ON control_events(ts);
`

const schemaRuntimeDaily = `
CREATE TABLE IF NOT EXISTS runtime_daily (
    day TEXT PRIMARY KEY,
    pump1_runtime_sec INTEGER NOT NULL DEFAULT 0,
    pump2_runtime_sec INTEGER NOT NULL DEFAULT 0,
    pump3_runtime_sec INTEGER NOT NULL DEFAULT 0,
    heater_runtime_sec INTEGER NOT NULL DEFAULT 0,
    pump1_starts INTEGER NOT NULL DEFAULT 0,
    pump2_starts INTEGER NOT NULL DEFAULT 0,
    pump3_starts INTEGER NOT NULL DEFAULT 0,
    heater_starts INTEGER NOT NULL DEFAULT 0,
    valve_fresh_switches INTEGER NOT NULL DEFAULT 0,
    valve_heat_switches INTEGER NOT NULL DEFAULT 0,
    updated_ts INTEGER NOT NULL
);
`

const schemaKVState = `
CREATE TABLE IF NOT EXISTS kv_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_ts INTEGER NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaProcessSamples,
		schemaSystemSamples,
		schemaControlEvents,
		schemaRuntimeDaily,
		schemaKVState,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
