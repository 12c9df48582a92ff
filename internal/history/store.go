// Package history keeps a durable log of generated reports in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Source says where the data of a report came from.
type Source string

const (
	SourceAPI    Source = "api"    // fetched from the reports API
	SourceUpload Source = "upload" // POSTed report input
	SourceFile   Source = "file"   // CLI --input
)

// Entry is one generation attempt.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Format    string    `json:"format"`
	Source    Source    `json:"source"`
	Filename  string    `json:"filename,omitempty"`
	Pages     int       `json:"pages"`
	Bytes     int       `json:"bytes"`
	Error     string    `json:"error,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Succeeded reports whether the attempt produced a file.
func (e Entry) Succeeded() bool {
	return e.Error == ""
}

// StoreConfig holds configuration for the history store
type StoreConfig struct {
	DBPath        string
	Retention     time.Duration // entries older than this are pruned
	PruneInterval time.Duration
}

// DefaultConfig keeps a quarter of history next to the generated reports.
func DefaultConfig(dataDir string) StoreConfig {
	return StoreConfig{
		DBPath:        filepath.Join(dataDir, "history.db"),
		Retention:     90 * 24 * time.Hour,
		PruneInterval: time.Hour,
	}
}

// Store provides persistent report history
type Store struct {
	db     *sql.DB
	config StoreConfig

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewStore opens (creating if needed) the history database and starts the
// retention worker.
func NewStore(config StoreConfig) (*Store, error) {
	if config.Retention <= 0 {
		config.Retention = DefaultConfig("").Retention
	}
	if config.PruneInterval <= 0 {
		config.PruneInterval = time.Hour
	}

	dir := filepath.Dir(config.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// Open database with pragmas in DSN so every pool connection is configured
	dsn := config.DBPath + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	}.Encode()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{
		db:     db,
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	go store.backgroundWorker()

	log.Info().
		Str("path", config.DBPath).
		Dur("retention", config.Retention).
		Msg("Report history store initialized")

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			format TEXT NOT NULL,
			source TEXT NOT NULL,
			filename TEXT NOT NULL DEFAULT '',
			pages INTEGER NOT NULL DEFAULT 0,
			bytes INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Record stores one entry. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("history entry has no id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, kind, format, source, filename, pages, bytes, error, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Kind, e.Format, string(e.Source), e.Filename, e.Pages, e.Bytes, e.Error, e.RequestID, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record report %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, format, source, filename, pages, bytes, error, request_id, created_at
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e       Entry
			source  string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Format, &source, &e.Filename, &e.Pages, &e.Bytes, &e.Error, &e.RequestID, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Source = Source(source)
		e.CreatedAt = time.UnixMilli(created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// backgroundWorker prunes old entries until Close.
func (s *Store) backgroundWorker() {
	defer close(s.doneCh)

	retentionTicker := time.NewTicker(s.config.PruneInterval)
	defer retentionTicker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-retentionTicker.C:
			s.runRetention(time.Now())
		}
	}
}

// runRetention deletes entries older than the retention period.
func (s *Store) runRetention(now time.Time) int64 {
	cutoff := now.Add(-s.config.Retention).UnixMilli()
	result, err := s.db.Exec(`DELETE FROM reports WHERE created_at < ?`, cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prune report history")
		return 0
	}
	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("Report history retention cleanup completed")
	}
	return deleted
}

// Close shuts down the store gracefully
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	select {
	case <-s.doneCh:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("History store shutdown timed out")
	}

	return s.db.Close()
}
