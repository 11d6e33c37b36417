package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore SQLite search history implementation
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite history store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}

	// Initialize tables
	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	return store, nil
}

// initTables initializes database tables
func (s *SQLiteStore) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			provider TEXT NOT NULL,
			result_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_query ON searches(query)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute SQL: %s, error: %w", query, err)
		}
	}

	return nil
}

// SaveSearch records one completed search
func (s *SQLiteStore) SaveSearch(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		"INSERT INTO searches (id, query, provider, result_count, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID, rec.Query, rec.Provider, rec.ResultCount, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}

	return nil
}

// RecentSearches returns the newest records first
func (s *SQLiteStore) RecentSearches(limit int) ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT id, query, provider, result_count, created_at
		 FROM searches
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get searches: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchByKeyword finds past searches whose query matches the keyword
func (s *SQLiteStore) SearchByKeyword(keyword string, limit int) ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT id, query, provider, result_count, created_at
		 FROM searches
		 WHERE query LIKE ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		"%"+keyword+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Provider, &rec.ResultCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// DeleteSearch removes one record by ID
func (s *SQLiteStore) DeleteSearch(id string) error {
	_, err := s.db.Exec("DELETE FROM searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	return nil
}

// Clear removes all records
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM searches")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
