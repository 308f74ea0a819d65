package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

// SQLiteIndex is a read-only view over a pre-built SQLite FTS5 database.
// Tokenization (porter/unicode61) and bm25() scoring are SQLite's.
type SQLiteIndex struct {
	mu          sync.RWMutex
	db          *sql.DB
	path        string
	withContent bool
	closed      bool
}

// Verify interface implementation at compile time
var _ Index = (*SQLiteIndex)(nil)

// validateSQLiteIntegrity checks that an FTS5 database looks sound before
// opening. Like the Bleve path, a broken database is reported, never cleared.
func validateSQLiteIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return lexerrors.New(lexerrors.ErrCodeIndexNotFound,
			fmt.Sprintf("no FTS5 index at %s", path), err).
			WithSuggestion("build one with 'lexstore build --backend sqlite'")
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"cannot open for validation", err).WithDetail("path", path)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"integrity check failed", err).WithDetail("path", path)
	}
	if result != "ok" {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			fmt.Sprintf("database corrupted: %s", result), nil).WithDetail("path", path)
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
                       WHERE type='table' AND name='fts_content'`).Scan(&count)
	if err != nil {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"cannot query schema", err).WithDetail("path", path)
	}
	if count == 0 {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"FTS5 table 'fts_content' missing", nil).WithDetail("path", path)
	}

	return nil
}

// OpenSQLiteIndex opens a pre-built FTS5 index read-only.
func OpenSQLiteIndex(path string, opts OpenOptions) (*SQLiteIndex, error) {
	if err := validateSQLiteIntegrity(path); err != nil {
		return nil, err
	}

	// mode=ro guarantees immutability at the driver level. SQLite pages the
	// database through its own cache; immutable=1 would also skip locking
	// but breaks live replacement, so plain read-only is used.
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"failed to open database", err).WithDetail("path", path)
	}

	// A single connection is plenty for a read-only index
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	var count int
	_ = db.QueryRow(`SELECT COUNT(*) FROM doc_ids`).Scan(&count)
	slog.Debug("sqlite_index_opened",
		slog.String("path", path),
		slog.Int("doc_count", count))

	return &SQLiteIndex{
		db:          db,
		path:        path,
		withContent: opts.WithContent,
	}, nil
}

// escapeMatchQuery quotes each query token so FTS5 treats it as a bare term.
// Raw user input may contain FTS5 operators (AND, NEAR, ", *) that would
// otherwise change query semantics or fail to parse.
func escapeMatchQuery(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// Search returns documents matching the query, scored by FTS5's bm25().
func (s *SQLiteIndex) Search(ctx context.Context, queryStr string, limit int) ([]*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexClosed, "index is closed", nil)
	}

	if strings.TrimSpace(queryStr) == "" {
		return []*Result{}, nil
	}

	matchQuery := escapeMatchQuery(queryStr)
	if matchQuery == "" {
		return []*Result{}, nil
	}

	// bm25() returns negative values where lower = better match
	query := `
		SELECT doc_id, content, meta, bm25(fts_content) AS score
		FROM fts_content
		WHERE fts_content MATCH ?
		ORDER BY score
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, matchQuery, limit)
	if err != nil {
		// FTS5 reports unparseable match queries as errors, treat as no results
		if strings.Contains(err.Error(), "fts5:") || strings.Contains(err.Error(), "syntax error") {
			return []*Result{}, nil
		}
		return nil, lexerrors.New(lexerrors.ErrCodeSearchFailed, "search failed", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var (
			docID    string
			content  sql.NullString
			metaJSON sql.NullString
			score    float64
		)
		if err := rows.Scan(&docID, &content, &metaJSON, &score); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		// Negate: higher positive = better match (consistent with Bleve)
		r := &Result{DocID: docID, Score: -score}
		if s.withContent {
			r.Content = content.String
			if metaJSON.Valid && metaJSON.String != "" {
				var meta map[string]any
				if err := json.Unmarshal([]byte(metaJSON.String), &meta); err == nil {
					r.Meta = meta
				}
			}
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// DocCount returns the number of documents in the index.
func (s *SQLiteIndex) DocCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, lexerrors.New(lexerrors.ErrCodeIndexClosed, "index is closed", nil)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM doc_ids`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// AllIDs returns all document IDs in the index.
func (s *SQLiteIndex) AllIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexClosed, "index is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT doc_id FROM doc_ids ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats returns index statistics.
func (s *SQLiteIndex) Stats() *IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return &IndexStats{Backend: BackendSQLite}
	}

	var count int
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM doc_ids`).Scan(&count)

	var size int64
	if info, err := os.Stat(s.path); err == nil {
		size = info.Size()
	}

	return &IndexStats{
		DocumentCount: count,
		Backend:       BackendSQLite,
		SizeBytes:     size,
	}
}

// Close closes the index. Idempotent.
func (s *SQLiteIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
