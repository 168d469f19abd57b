package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/use-agent/mapscout/models"
)

// Store persists every collected record to a SQLite database, keyed by
// the query that produced it. It implements output.Sink so the runner
// can treat it like any other sink.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	// Optimize for write throughput
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS places (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT,
		website TEXT,
		phone_number TEXT,
		reviews_count INTEGER,
		reviews_average REAL,
		latitude REAL,
		longitude REAL,
		query TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_places_query ON places(query);
	CREATE INDEX IF NOT EXISTS idx_places_coords ON places(latitude, longitude);
	`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Write inserts one batch inside a single transaction.
func (s *Store) Write(query string, batch models.RecordBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO places
		(name, address, website, phone_number, reviews_count, reviews_average,
		 latitude, longitude, query)
		VALUES (?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		_, err := stmt.Exec(
			rec.Name, rec.Address, rec.Website, rec.PhoneNumber,
			nullInt(rec.ReviewsCount), nullFloat(rec.ReviewsAverage),
			nullFloat(rec.Latitude), nullFloat(rec.Longitude),
			query,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting record %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}
	return nil
}

// Count reports the total number of persisted records.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM places").Scan(&count)
	return count, err
}

// CountByQuery reports how many records one query produced.
func (s *Store) CountByQuery(query string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM places WHERE query = ?", query).Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
