// Package store keeps the history of pipeline runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultFile is the history database file name inside the config directory.
const DefaultFile = "history.db"

// defaultListLimit bounds List when the caller passes no limit.
const defaultListLimit = 20

// Run is one recorded pipeline run.
type Run struct {
	ID             int64
	VideoID        string
	Provider       string
	Model          string
	Captions       bool // false when the placeholder text was used
	OriginalTokens int
	SentTokens     int
	ArticleTokens  int
	Rounds         int
	Converged      bool
	InputCost      float64
	OutputCost     float64
	TotalCost      float64
	ArticlePath    string
	Elapsed        time.Duration
	CreatedAt      time.Time
}

// Totals aggregates every recorded run.
type Totals struct {
	Runs           int
	OriginalTokens int64
	SentTokens     int64
	ArticleTokens  int64
	TotalCost      float64
}

// Store is a run history backed by SQLite. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// dsnPragmas are applied by the driver to every connection. WAL lets readers
// run beside a writer; busy_timeout makes a second process wait for the
// write lock instead of failing with SQLITE_BUSY.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// Open opens (or creates) the history database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil { // #nosec G301 -- user data dir
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	// SQLite: single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// initSchema creates the runs table if it doesn't exist.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id        TEXT NOT NULL,
		provider        TEXT NOT NULL DEFAULT '',
		model           TEXT NOT NULL DEFAULT '',
		captions        INTEGER NOT NULL DEFAULT 0,
		original_tokens INTEGER NOT NULL,
		sent_tokens     INTEGER NOT NULL,
		article_tokens  INTEGER NOT NULL,
		rounds          INTEGER NOT NULL DEFAULT 0,
		converged       INTEGER NOT NULL DEFAULT 1,
		input_cost      REAL NOT NULL,
		output_cost     REAL NOT NULL,
		total_cost      REAL NOT NULL,
		article_path    TEXT NOT NULL DEFAULT '',
		elapsed_ms      INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	)`)
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record saves run and returns its ID. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if run.VideoID == "" {
		return 0, fmt.Errorf("store: video ID is required: %w", ErrInvalidRun)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(video_id, provider, model, captions, original_tokens, sent_tokens, article_tokens,
		 rounds, converged, input_cost, output_cost, total_cost, article_path, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.VideoID, run.Provider, run.Model, run.Captions,
		run.OriginalTokens, run.SentTokens, run.ArticleTokens,
		run.Rounds, run.Converged, run.InputCost, run.OutputCost, run.TotalCost,
		run.ArticlePath, run.Elapsed.Milliseconds(),
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return id, nil
}

// List returns up to limit runs, newest first. videoID filters when non-empty.
// A limit <= 0 uses the default of 20.
func (s *Store) List(ctx context.Context, videoID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, video_id, provider, model, captions, original_tokens, sent_tokens,
		article_tokens, rounds, converged, input_cost, output_cost, total_cost,
		article_path, elapsed_ms, created_at FROM runs`
	args := []any{}
	if videoID != "" {
		query += ` WHERE video_id = ?`
		args = append(args, videoID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			elapsedMS int64
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.VideoID, &r.Provider, &r.Model, &r.Captions,
			&r.OriginalTokens, &r.SentTokens, &r.ArticleTokens, &r.Rounds, &r.Converged,
			&r.InputCost, &r.OutputCost, &r.TotalCost, &r.ArticlePath, &elapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}

// Totals sums tokens and cost over every recorded run.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(original_tokens), 0), COALESCE(SUM(sent_tokens), 0),
		COALESCE(SUM(article_tokens), 0), COALESCE(SUM(total_cost), 0)
		FROM runs`).Scan(&t.Runs, &t.OriginalTokens, &t.SentTokens, &t.ArticleTokens, &t.TotalCost)
	if err != nil {
		return Totals{}, fmt.Errorf("store: totals: %w", err)
	}
	return t, nil
}
