package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"coaster-studio/internal/log"
)

// ErrNotFound is returned when a named track does not exist.
var ErrNotFound = errors.New("track not found")

// Store persists named track documents in a sqlite database, one JSON
// document per row.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the track database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open track db: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tracks (
		name TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init track db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a named track document.
func (s *Store) Save(name string, doc TrackDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode track %q: %w", name, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO tracks (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		name, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save track %q: %w", name, err)
	}
	log.Logger.Info("track saved", zap.String("name", name),
		zap.Int("points", len(doc.TrackPoints)), zap.Int("loops", len(doc.LoopSegments)))
	return nil
}

// Load fetches a named track document.
func (s *Store) Load(name string) (TrackDocument, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM tracks WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return TrackDocument{}, ErrNotFound
	}
	if err != nil {
		return TrackDocument{}, fmt.Errorf("load track %q: %w", name, err)
	}
	var doc TrackDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return TrackDocument{}, fmt.Errorf("decode track %q: %w", name, err)
	}
	return doc, nil
}

// List returns the stored track names, most recently updated first.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM tracks ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tracks: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a named track. Deleting a missing track is not an error.
func (s *Store) Delete(name string) error {
	_, err := s.db.Exec(`DELETE FROM tracks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete track %q: %w", name, err)
	}
	return nil
}

// Export writes a stored track's raw JSON document to a file.
func (s *Store) Export(name, path string) error {
	doc, err := s.Load(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode track %q: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export track %q: %w", name, err)
	}
	return nil
}

// Import reads a JSON document from a file and stores it under name.
func (s *Store) Import(name, path string) (TrackDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TrackDocument{}, fmt.Errorf("import track %q: %w", name, err)
	}
	var doc TrackDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return TrackDocument{}, fmt.Errorf("import track %q: %w", name, err)
	}
	if err := s.Save(name, doc); err != nil {
		return TrackDocument{}, err
	}
	return doc, nil
}
