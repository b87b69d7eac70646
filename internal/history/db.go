package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite journal of past searches and file listings.
// It stores what the user asked for, never catalog payloads.
type DB struct {
	db *sql.DB
}

// NewSessionID returns an identifier grouping the records of one TUI session.
func NewSessionID() string {
	return uuid.NewString()
}

// Open opens or creates the journal at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		query TEXT NOT NULL,
		result_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_searches_session ON searches(session);

	CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		file_name TEXT NOT NULL DEFAULT '',
		download_key TEXT NOT NULL,
		file_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listings_session ON listings(session);
	`
	_, err := db.Exec(schema)
	return err
}

// SearchEntry is one recorded search.
type SearchEntry struct {
	ID          int64     `json:"id"`
	Session     string    `json:"session"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Listing is one recorded file listing of a download source.
type Listing struct {
	ID          int64     `json:"id"`
	Session     string    `json:"session"`
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	DownloadKey string    `json:"download_key"`
	FileCount   int       `json:"file_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordSearch appends a search to the journal.
func (d *DB) RecordSearch(session, query string, resultCount int) error {
	_, err := d.db.Exec(
		`INSERT INTO searches (session, query, result_count, created_at) VALUES (?, ?, ?, ?)`,
		session, query, resultCount, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// RecordListing appends a file listing to the journal.
func (d *DB) RecordListing(session, title, fileName, downloadKey string, fileCount int) error {
	_, err := d.db.Exec(
		`INSERT INTO listings (session, title, file_name, download_key, file_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session, title, fileName, downloadKey, fileCount, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording listing: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first.
func (d *DB) RecentSearches(limit int) ([]SearchEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(`
		SELECT id, session, query, result_count, created_at
		FROM searches
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	var entries []SearchEntry
	for rows.Next() {
		var e SearchEntry
		if err := rows.Scan(&e.ID, &e.Session, &e.Query, &e.ResultCount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentListings returns up to limit listings, newest first.
func (d *DB) RecentListings(limit int) ([]Listing, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.Query(`
		SELECT id, session, title, file_name, download_key, file_count, created_at
		FROM listings
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.Session, &l.Title, &l.FileName, &l.DownloadKey, &l.FileCount, &l.CreatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Clear deletes every record and returns how many were removed.
func (d *DB) Clear() (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var total int64
	for _, table := range []string{"searches", "listings"} {
		res, err := tx.Exec("DELETE FROM " + table)
		if err != nil {
			return 0, fmt.Errorf("clearing %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, tx.Commit()
}

// Stats summarizes the journal.
type Stats struct {
	Searches int
	Listings int
	Sessions int
}

// GetStats returns statistics about the journal.
func (d *DB) GetStats() (Stats, error) {
	var s Stats
	if err := d.db.QueryRow("SELECT COUNT(*) FROM searches").Scan(&s.Searches); err != nil {
		return s, err
	}
	if err := d.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&s.Listings); err != nil {
		return s, err
	}
	if err := d.db.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT session FROM searches UNION SELECT session FROM listings
		)`).Scan(&s.Sessions); err != nil {
		return s, err
	}
	return s, nil
}
