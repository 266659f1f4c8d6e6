package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wordcrawl/internal/model"
)

// DBFileName is the archive file name inside the database directory.
const DBFileName = "wordcrawl.db"

// HistoryDB is the SQLite archive of finished searches.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// MustExistOptions returns options for commands that work on an existing
// archive, such as history.
// Opening fails if no search has been archived yet.
func MustExistOptions() Options {
	return Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	}
}

// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
// and no archive exists.
var ErrDatabaseNotFound = errors.New("search archive not found")

// Open opens or creates a HistoryDB in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per finished search
	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		term TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL,
		found_url TEXT,
		pages_visited INTEGER NOT NULL,
		page_budget INTEGER NOT NULL,
		discovered INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		report_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_searches_seed ON searches(seed);
	CREATE INDEX IF NOT EXISTS idx_searches_term ON searches(term);
	CREATE INDEX IF NOT EXISTS idx_searches_started ON searches(started_at);

	-- Visited pages in visit order
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		search_id INTEGER NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		final_url TEXT,
		status TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		link_count INTEGER NOT NULL,
		failure TEXT,
		raw_hash TEXT,
		matched INTEGER NOT NULL DEFAULT 0,
		UNIQUE(search_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_search ON pages(search_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSearch archives a finished search and its pages in one transaction.
// The new row id is returned and also stored in report.ID.
func (hdb *HistoryDB) SaveSearch(ctx context.Context, report *model.SearchReport) (int64, error) {
	if report == nil || report.Outcome == nil {
		return 0, errors.New("cannot save a search without an outcome")
	}
	outcome := report.Outcome

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO searches (seed, term, outcome, reason, found_url, pages_visited, page_budget, discovered, started_at, finished_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Seed,
		report.Term,
		outcome.Kind.String(),
		string(outcome.Reason),
		outcome.URL,
		outcome.PagesVisited,
		report.PageBudget,
		len(outcome.Discovered),
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert search: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get search id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (search_id, position, url, final_url, status, status_code, content_type, title, link_count, failure, raw_hash, matched)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range outcome.Pages {
		if _, err := stmt.ExecContext(ctx,
			id,
			i,
			p.URL,
			p.FinalURL,
			string(p.Status),
			p.StatusCode,
			p.ContentType,
			p.Title,
			p.LinkCount,
			p.Failure,
			p.Hash,
			p.Matched,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit search: %w", err)
	}

	report.ID = id
	return id, nil
}

// SearchSummary is one row of the search list.
// It is read from the indexed columns without decoding the stored report.
type SearchSummary struct {
	ID           int64             `json:"id"`
	Seed         string            `json:"seed"`
	Term         string            `json:"term"`
	Outcome      model.OutcomeKind `json:"outcome"`
	Reason       model.Reason      `json:"reason"`
	FoundURL     string            `json:"found_url,omitempty"`
	PagesVisited int               `json:"pages_visited"`
	PageBudget   int               `json:"page_budget"`
	Discovered   int               `json:"discovered"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
}

// Duration returns how long the search took.
func (s SearchSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// ListSearches returns the most recent searches, newest first.
// A non-positive limit returns all searches.
func (hdb *HistoryDB) ListSearches(ctx context.Context, limit int) ([]SearchSummary, error) {
	query := `
	SELECT id, seed, term, outcome, reason, COALESCE(found_url, ''), pages_visited, page_budget, discovered, started_at, finished_at
	FROM searches
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	results := make([]SearchSummary, 0)
	for rows.Next() {
		var s SearchSummary
		var outcome, reason, startedAt, finishedAt string

		if err := rows.Scan(
			&s.ID,
			&s.Seed,
			&s.Term,
			&outcome,
			&reason,
			&s.FoundURL,
			&s.PagesVisited,
			&s.PageBudget,
			&s.Discovered,
			&startedAt,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}

		kind, err := model.ParseOutcomeKind(outcome)
		if err != nil {
			return nil, fmt.Errorf("search %d: %w", s.ID, err)
		}
		s.Outcome = kind
		s.Reason = model.Reason(reason)
		s.StartedAt = parseTimestamp(startedAt)
		s.FinishedAt = parseTimestamp(finishedAt)

		results = append(results, s)
	}

	return results, rows.Err()
}

// GetSearch retrieves an archived search by id.
// Returns nil, nil if no search has that id.
func (hdb *HistoryDB) GetSearch(ctx context.Context, id int64) (*model.SearchReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT report_json FROM searches WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // not found is not an error for callers
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}

	var report model.SearchReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id

	return &report, nil
}

// PageRecord is a stored page row.
type PageRecord struct {
	Position    int               `json:"position"`
	URL         string            `json:"url"`
	FinalURL    string            `json:"final_url,omitempty"`
	Status      model.FetchStatus `json:"status"`
	StatusCode  int               `json:"status_code,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Title       string            `json:"title,omitempty"`
	LinkCount   int               `json:"link_count"`
	Failure     string            `json:"failure,omitempty"`
	Hash        string            `json:"hash,omitempty"`
	Matched     bool              `json:"matched,omitempty"`
}

// ListPages returns the pages of a search in visit order.
func (hdb *HistoryDB) ListPages(ctx context.Context, searchID int64) ([]PageRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT position, url, COALESCE(final_url, ''), status, COALESCE(status_code, 0), COALESCE(content_type, ''),
		COALESCE(title, ''), link_count, COALESCE(failure, ''), COALESCE(raw_hash, ''), matched
	FROM pages
	WHERE search_id = ?
	ORDER BY position
	`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	results := make([]PageRecord, 0)
	for rows.Next() {
		var p PageRecord
		var status string
		if err := rows.Scan(
			&p.Position,
			&p.URL,
			&p.FinalURL,
			&status,
			&p.StatusCode,
			&p.ContentType,
			&p.Title,
			&p.LinkCount,
			&p.Failure,
			&p.Hash,
			&p.Matched,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.Status = model.FetchStatus(status)
		results = append(results, p)
	}

	return results, rows.Err()
}

// DeleteSearch removes a search and its pages.
// It reports whether a row was deleted.
func (hdb *HistoryDB) DeleteSearch(ctx context.Context, id int64) (bool, error) {
	result, err := hdb.db.ExecContext(ctx, `DELETE FROM searches WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete search: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete search: %w", err)
	}
	return n > 0, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // What SaveSearch writes
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
