// Package store keeps client-local documents (session credentials, the cached
// workout plan, notes, calorie entries) in a SQLite file under the state dir.
//
// Every value is JSON wrapped in an envelope carrying a schema version. There
// is no migration path: a document written by a newer schema is reported as
// ErrVersion rather than decoded into the wrong shape.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the envelope version written by this build.
const SchemaVersion = 1

// Keys of the documents this package manages itself. The session pair and
// the entitlement are owned by pkg/session and pkg/entitlement.
const (
	workoutPlanKey = "workout_plan"
	notesKey       = "workout_notes"
	caloriesKey    = "calorie_entries"
)

// ErrVersion is returned when a stored document has a newer schema version.
var ErrVersion = errors.New("store: document written by a newer schema")

type envelope struct {
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Data      json.RawMessage `json:"data"`
}

// DB is a key-value document store backed by SQLite.
type DB struct {
	db *sql.DB
	mu sync.Mutex // serializes writers; SQLite allows one at a time anyway
}

// Open opens (or creates) the document database at dir/fitline.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}
	return OpenPath(filepath.Join(dir, "fitline.db"))
}

// OpenPath opens the document database at an explicit path. ":memory:" works
// for tests.
func OpenPath(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening document db: %w", err)
	}
	// One connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}
	return &DB{db: db}, nil
}

// Get decodes the document stored under key into v. It reports false when
// no document exists.
func (s *DB) Get(key string, v any) (bool, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store.Get %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return false, fmt.Errorf("store.Get %s: decode envelope: %w", key, err)
	}
	if env.Version > SchemaVersion {
		return false, fmt.Errorf("store.Get %s: version %d: %w", key, env.Version, ErrVersion)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return false, fmt.Errorf("store.Get %s: decode data: %w", key, err)
	}
	return true, nil
}

// Put replaces the document stored under key.
func (s *DB) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store.Put %s: marshal: %w", key, err)
	}
	body, err := json.Marshal(envelope{Version: SchemaVersion, UpdatedAt: time.Now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("store.Put %s: marshal envelope: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO documents (key, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		key, string(body),
	)
	if err != nil {
		return fmt.Errorf("store.Put %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (s *DB) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store.Delete: begin: %w", err)
	}
	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM documents WHERE key = ?`, k); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("store.Delete %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store.Delete: commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *DB) Close() error {
	return s.db.Close()
}
