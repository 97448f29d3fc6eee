package graph

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists graph documents in a SQLite database, one row per
// project. It exists for deployments where many projects share one store and
// the file-per-project layout gets unwieldy.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLiteStore opens or creates the database at dbPath.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas for reliability under concurrent readers
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS graph_documents (
		project_id TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Load implements DocumentStore.
func (s *SQLiteStore) Load(projectID string) (Document, bool, error) {
	var payload []byte
	err := s.conn.QueryRow(
		"SELECT payload FROM graph_documents WHERE project_id = ?", projectID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("failed to read graph document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, false, fmt.Errorf("graph document is not valid JSON: %w", err)
	}
	return doc, true, nil
}

// Save implements DocumentStore. The upsert replaces the whole payload.
func (s *SQLiteStore) Save(projectID string, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode graph document: %w", err)
	}

	_, err = s.conn.Exec(
		`INSERT INTO graph_documents (project_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		projectID, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write graph document: %w", err)
	}
	return nil
}

// Delete implements DocumentStore.
func (s *SQLiteStore) Delete(projectID string) error {
	_, err := s.conn.Exec("DELETE FROM graph_documents WHERE project_id = ?", projectID)
	return err
}
