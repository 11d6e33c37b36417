package history

import (
	"time"
)

// Store search history storage interface
type Store interface {
	// SaveSearch records one completed search
	SaveSearch(rec *Record) error
	// RecentSearches returns the newest records first
	RecentSearches(limit int) ([]*Record, error)
	// SearchByKeyword finds past searches whose query matches the keyword
	SearchByKeyword(keyword string, limit int) ([]*Record, error)
	// DeleteSearch removes one record by ID
	DeleteSearch(id string) error
	// Clear removes all records
	Clear() error

	// Close connection
	Close() error
}

// Record one recorded search. Only metadata is kept; result payloads are
// never stored.
type Record struct {
	ID          string
	Query       string
	Provider    string
	ResultCount int
	CreatedAt   time.Time
}
