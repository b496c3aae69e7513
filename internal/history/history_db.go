// Package history records executed requests in the local SQLite database.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/studiowebux/oasedit/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

var ErrNotFound = errors.New("history entry not found")

const selectColumns = `
	SELECT id, timestamp, COALESCE(document_title, ''), path, method, url, headers, body,
	       response_status, response_status_text, response_headers, response_body,
	       duration_ms, request_size, response_size, error
	FROM history
`

// Manager reads and writes the history table. The schema is created by
// storage.Open; the database handle is owned by the caller.
type Manager struct {
	db  *sql.DB
	now func() time.Time
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db, now: time.Now}
}

func (m *Manager) Save(entry *types.HistoryEntry) error {
	headersJSON, err := json.Marshal(entry.Headers)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}

	responseHeadersJSON, err := json.Marshal(entry.ResponseHeaders)
	if err != nil {
		return fmt.Errorf("failed to marshal response headers: %w", err)
	}

	query := `
		INSERT INTO history (
			timestamp, document_title, path, method, url, headers, body,
			response_status, response_status_text, response_headers, response_body,
			duration_ms, request_size, response_size, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// Format timestamp for SQLite in local time
	timestampStr := m.now().Local().Format(timestampLayout)

	res, err := m.db.Exec(query,
		timestampStr,
		entry.DocumentTitle,
		entry.Path,
		entry.Method,
		entry.URL,
		string(headersJSON),
		entry.Body,
		entry.ResponseStatus,
		entry.ResponseStatusText,
		string(responseHeadersJSON),
		entry.ResponseBody,
		entry.Duration,
		entry.RequestSize,
		entry.ResponseSize,
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// Load returns the most recent entries first. limit <= 0 returns all of them.
func (m *Manager) Load(limit int) ([]types.HistoryEntry, error) {
	query := selectColumns + ` ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LoadForOperation returns the entries sent for one path and method
func (m *Manager) LoadForOperation(path, method string) ([]types.HistoryEntry, error) {
	query := selectColumns + `
		WHERE path = ? AND method = UPPER(?)
		ORDER BY timestamp DESC, id DESC
	`

	rows, err := m.db.Query(query, path, method)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for operation: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (m *Manager) Get(id int64) (*types.HistoryEntry, error) {
	rows, err := m.db.Query(selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return &entries[0], nil
}

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var (
			entry               types.HistoryEntry
			timestamp           string
			headersJSON         string
			body                sql.NullString
			responseHeadersJSON string
			requestSize         sql.NullInt64
			responseSize        sql.NullInt64
			errorMsg            sql.NullString
		)

		err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.DocumentTitle,
			&entry.Path,
			&entry.Method,
			&entry.URL,
			&headersJSON,
			&body,
			&entry.ResponseStatus,
			&entry.ResponseStatusText,
			&responseHeadersJSON,
			&entry.ResponseBody,
			&entry.Duration,
			&requestSize,
			&responseSize,
			&errorMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if err := json.Unmarshal([]byte(headersJSON), &entry.Headers); err != nil {
			entry.Headers = make(map[string]string)
		}
		if err := json.Unmarshal([]byte(responseHeadersJSON), &entry.ResponseHeaders); err != nil {
			entry.ResponseHeaders = make(map[string]string)
		}

		// Parse timestamp as local time
		parsedTime, err := time.ParseInLocation(timestampLayout, timestamp, time.Local)
		if err != nil {
			parsedTime, err = time.Parse(time.RFC3339, timestamp)
			if err != nil {
				parsedTime = time.Now()
			}
		}

		entry.Timestamp = parsedTime.Format(time.RFC3339)
		entry.Body = body.String
		entry.RequestSize = int(requestSize.Int64)
		entry.ResponseSize = int(responseSize.Int64)
		entry.Error = errorMsg.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Delete(id int64) error {
	res, err := m.db.Exec("DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}
