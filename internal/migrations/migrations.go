// Package migrations owns the SQLite schema shared by storage and history.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"
)

// Migration is one versioned schema change applied after the base tables
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// All lists the migrations in the order they are applied
var All = []Migration{
	{
		Version: 1,
		Name:    "history operation indices",
		SQL: `CREATE INDEX IF NOT EXISTS idx_history_operation ON history(path, method);
		      CREATE INDEX IF NOT EXISTS idx_history_document ON history(document_title);`,
	},
	{
		Version: 2,
		Name:    "kv updated_at index",
		SQL:     `CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv(updated_at DESC);`,
	},
}

var baseTables = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp            DATETIME NOT NULL,
		document_title       TEXT,
		path                 TEXT NOT NULL,
		method               TEXT NOT NULL,
		url                  TEXT NOT NULL,
		headers              TEXT NOT NULL,
		body                 TEXT,
		response_status      INTEGER NOT NULL,
		response_status_text TEXT NOT NULL,
		response_headers     TEXT NOT NULL,
		response_body        TEXT NOT NULL,
		duration_ms          INTEGER NOT NULL,
		request_size         INTEGER,
		response_size        INTEGER,
		error                TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Run creates the base tables and applies every migration newer than the
// recorded version. Each migration commits on its own.
func Run(db *sql.DB) error {
	for _, stmt := range baseTables {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	current, err := Version(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	for _, m := range All {
		if m.Version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return err
		}
	}
	return nil
}

// Version returns the highest applied migration, 0 for a fresh database
func Version(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return v, nil
}

func apply(db *sql.DB, m Migration) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err = tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
