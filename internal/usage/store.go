// Package usage implements the token-usage accounting ledger.
//
// It records per-session token counts and estimated cost in SQLite,
// scraped from agent transcript text or reported directly by the caller.
// Accounting is simple additive arithmetic; the only place it touches the
// core harness is the usage_recorded entry written into the progress
// ledger after each recording.
package usage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DBFile is the SQLite filename under the ratchet/ data dir.
const DBFile = "usage.db"

// Record is one accounting row: token counters for a slice of work.
type Record struct {
	ID           int64   `json:"id"`
	SessionID    string  `json:"session_id"`
	FeatureID    string  `json:"feature_id,omitempty"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CacheTokens  int64   `json:"cache_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	CreatedAt    string  `json:"created_at"`
}

// Totals is the additive rollup over a set of records.
type Totals struct {
	Records      int     `json:"records"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CacheTokens  int64   `json:"cache_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Store is the SQLite-backed accounting ledger.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the usage database under the project's ratchet/
// directory, enables WAL mode, and runs migrations.
func New(projectRoot string) (*Store, error) {
	dir := filepath.Join(projectRoot, "ratchet")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("usage: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("usage: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("usage: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("usage: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS usage_records (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id    TEXT    NOT NULL,
			feature_id    TEXT,
			input_tokens  INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			cache_tokens  INTEGER NOT NULL DEFAULT 0,
			cost_usd      REAL    NOT NULL DEFAULT 0,
			created_at    TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_usage_session ON usage_records(session_id);
		CREATE INDEX IF NOT EXISTS idx_usage_feature ON usage_records(feature_id);
		CREATE INDEX IF NOT EXISTS idx_usage_created ON usage_records(created_at DESC);
	`)
	return err
}

// Add inserts one accounting record and returns its id.
func (s *Store) Add(r Record) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO usage_records (session_id, feature_id, input_tokens, output_tokens, cache_tokens, cost_usd)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.SessionID, nullableString(r.FeatureID),
		r.InputTokens, r.OutputTokens, r.CacheTokens, r.CostUSD,
	)
	if err != nil {
		return 0, fmt.Errorf("usage: insert record: %w", err)
	}
	return res.LastInsertId()
}

// SessionTotals sums all records for one session.
func (s *Store) SessionTotals(sessionID string) (Totals, error) {
	return s.totals(`WHERE session_id = ?`, sessionID)
}

// FeatureTotals sums all records attributed to one feature.
func (s *Store) FeatureTotals(featureID string) (Totals, error) {
	return s.totals(`WHERE feature_id = ?`, featureID)
}

// GrandTotals sums every record in the ledger.
func (s *Store) GrandTotals() (Totals, error) {
	return s.totals("")
}

func (s *Store) totals(where string, args ...any) (Totals, error) {
	var t Totals
	query := `SELECT COUNT(*),
	                 COALESCE(SUM(input_tokens), 0),
	                 COALESCE(SUM(output_tokens), 0),
	                 COALESCE(SUM(cache_tokens), 0),
	                 COALESCE(SUM(cost_usd), 0)
	          FROM usage_records ` + where
	err := s.db.QueryRow(query, args...).Scan(
		&t.Records, &t.InputTokens, &t.OutputTokens, &t.CacheTokens, &t.CostUSD,
	)
	if err != nil {
		return Totals{}, fmt.Errorf("usage: totals: %w", err)
	}
	return t, nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, COALESCE(feature_id, ''), input_tokens, output_tokens, cache_tokens, cost_usd, created_at
		 FROM usage_records ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("usage: recent: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.FeatureID,
			&r.InputTokens, &r.OutputTokens, &r.CacheTokens, &r.CostUSD, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// nullableString converts "" to NULL for optional text columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
