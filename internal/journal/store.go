// Package journal persists a history of configuration commits so
// operators can answer "what did floe last push to this interface,
// and did it stick". Entries are kept in a local SQLite database.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry represents a single recorded commit.
type Entry struct {
	ID          int64     `json:"id"`
	CommitID    string    `json:"commit_id"`
	Timestamp   time.Time `json:"timestamp"`
	Interface   string    `json:"interface"`
	Fingerprint string    `json:"fingerprint"`
	Gateway     string    `json:"gateway,omitempty"`
	Addresses   []string  `json:"addresses,omitempty"`
	Routes      []string  `json:"routes,omitempty"`
	Nameservers []string  `json:"nameservers,omitempty"`
	Success     bool      `json:"success"`
	Detail      string    `json:"detail,omitempty"`
}

// Store provides persistent storage for commit entries.
type Store struct {
	mu            sync.RWMutex
	db            *sql.DB
	retentionDays int
}

// Open creates or opens a journal database at the given path.
func Open(dbPath string, retentionDays int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS commit_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			commit_id TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			interface TEXT NOT NULL,
			fingerprint TEXT,
			gateway TEXT,
			addresses TEXT,
			routes TEXT,
			nameservers TEXT,
			success INTEGER DEFAULT 0,
			detail TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_journal_timestamp ON commit_journal(timestamp);
		CREATE INDEX IF NOT EXISTS idx_journal_interface ON commit_journal(interface);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}

	if retentionDays <= 0 {
		retentionDays = 30 // Default 30 days
	}

	return &Store{
		db:            db,
		retentionDays: retentionDays,
	}, nil
}

// Record persists a commit entry.
func (s *Store) Record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO commit_journal (commit_id, timestamp, interface, fingerprint, gateway, addresses, routes, nameservers, success, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.CommitID, e.Timestamp, e.Interface, e.Fingerprint, e.Gateway,
		marshalList(e.Addresses), marshalList(e.Routes), marshalList(e.Nameservers),
		e.Success, e.Detail)

	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first. If ifname is
// non-empty, only entries for that interface are returned.
func (s *Store) Recent(ifname string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, commit_id, timestamp, interface, fingerprint, gateway, addresses, routes, nameservers, success, detail
		FROM commit_journal`
	var args []any

	if ifname != "" {
		query += " WHERE interface = ?"
		args = append(args, ifname)
	}

	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fingerprint, gateway, addresses, routes, nameservers, detail sql.NullString

		err := rows.Scan(&e.ID, &e.CommitID, &e.Timestamp, &e.Interface, &fingerprint,
			&gateway, &addresses, &routes, &nameservers, &e.Success, &detail)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}

		if fingerprint.Valid {
			e.Fingerprint = fingerprint.String
		}
		if gateway.Valid {
			e.Gateway = gateway.String
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		e.Addresses = unmarshalList(addresses)
		e.Routes = unmarshalList(routes)
		e.Nameservers = unmarshalList(nameservers)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Prune removes entries older than the retention period.
func (s *Store) Prune() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	result, err := s.db.Exec("DELETE FROM commit_journal WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}

	return result.RowsAffected()
}

// Count returns the total number of entries in the journal.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM commit_journal").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func marshalList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalList(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var items []string
	json.Unmarshal([]byte(col.String), &items)
	return items
}
