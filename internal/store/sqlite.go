package store

import (
	"database/sql"
	"fmt"
	"sync"
)

// Current schema version
const SchemaVersion = "2"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens or creates a SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case SchemaVersion:
	case "", "1":
		if err := s.migrateToV2(version == "1"); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate store: %w", err)
		}
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// migrateToV2 creates the versioned definition log. A v1 store kept one
// row per name in the bindings table; each becomes version 1 of that name.
func (s *SQLite) migrateToV2(fromV1 bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS definitions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			source TEXT NOT NULL,
			ts TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS definitions_name ON definitions (name, version);
	`)
	if err != nil {
		return err
	}
	if fromV1 {
		_, err = tx.Exec(`
			INSERT INTO definitions (name, version, source, ts)
			SELECT name, 1, source, ? FROM bindings ORDER BY rowid
		`, timestamp())
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DROP TABLE bindings`); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Append records a new version of name.
func (s *SQLite) Append(name, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest int
	var latestSource string
	err := s.db.QueryRow(`
		SELECT version, source FROM definitions
		WHERE name = ? ORDER BY version DESC LIMIT 1
	`, name).Scan(&latest, &latestSource)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return 0, err
	case latestSource == source:
		return latest, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO definitions (name, version, source, ts) VALUES (?, ?, ?, ?)
	`, name, latest+1, source, timestamp())
	if err != nil {
		return 0, err
	}
	return latest + 1, nil
}

// Get retrieves the latest source for name.
func (s *SQLite) Get(name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var source string
	err := s.db.QueryRow(`
		SELECT source FROM definitions
		WHERE name = ? ORDER BY version DESC LIMIT 1
	`, name).Scan(&source)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return source, true, nil
}

// Delete removes every version of name.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM definitions WHERE name = ?", name)
	return err
}

// All returns every entry in sequence order.
func (s *SQLite) All() ([]Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT seq, name, version, source FROM definitions ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var defs []Definition
	for rows.Next() {
		var d Definition
		if err := rows.Scan(&d.Seq, &d.Name, &d.Version, &d.Source); err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// History returns versions of name, newest first.
func (s *SQLite) History(name string, limit int) ([]VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT version, source, ts FROM definitions
		WHERE name = ? ORDER BY version DESC LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []VersionEntry
	for rows.Next() {
		var e VersionEntry
		if err := rows.Scan(&e.Version, &e.Value, &e.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
