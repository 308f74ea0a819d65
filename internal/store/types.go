// Package store wraps the lexical ranking indexes lexstore adapts: Bleve v2
// scorch indexes and SQLite FTS5 databases. Tokenization, stemming, BM25
// scoring, and on-disk persistence are owned entirely by those libraries;
// this package only opens pre-built indexes, forwards queries, and builds
// new indexes offline through the same libraries.
package store

import (
	"context"
	"time"
)

// Backend identifies the wrapped index implementation.
type Backend string

const (
	// BackendBleve uses a Bleve v2 scorch index.
	BackendBleve Backend = "bleve"

	// BackendSQLite uses a SQLite FTS5 database with its built-in bm25().
	BackendSQLite Backend = "sqlite"
)

// On-disk layout inside a corpus directory.
const (
	// BleveIndexName is the Bleve index directory inside a corpus dir.
	BleveIndexName = "index.bleve"

	// SQLiteIndexName is the FTS5 database file inside a corpus dir.
	SQLiteIndexName = "index.db"

	// ManifestName is the build manifest file inside a corpus dir.
	ManifestName = "manifest.json"
)

// Indexed field names.
const (
	fieldContent = "content"
	fieldMeta    = "meta"
)

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

// Manifest records how a corpus index was built. It is lexstore's own
// sidecar metadata; the index format itself belongs to the wrapped library.
type Manifest struct {
	Backend  Backend   `json:"backend"`
	Language string    `json:"language"`
	DocCount int       `json:"doc_count"`
	BuiltAt  time.Time `json:"built_at"`
	Version  int       `json:"version"`
}

// Document is a unit of content handed to the index builder.
type Document struct {
	ID      string         `json:"id"`
	Content string         `json:"content"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Result is a single ranked hit returned by the wrapped index.
type Result struct {
	DocID string
	Score float64

	// Content is populated only when the index was opened WithContent.
	Content string

	// Meta is populated only when the index was opened WithContent and the
	// document carried metadata at build time.
	Meta map[string]any
}

// IndexStats provides statistics about an opened index.
type IndexStats struct {
	DocumentCount int
	Backend       Backend
	Language      string
	SizeBytes     int64
}

// OpenOptions controls how a pre-built index is opened.
type OpenOptions struct {
	// MMap opens the index through read-only, memory-mapped segments where
	// the backend supports it. Default true.
	MMap bool

	// WithContent requests stored document content (and metadata) back on
	// search hits. When false, hits carry bare document IDs.
	WithContent bool
}

// DefaultOpenOptions returns the default open options.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{MMap: true, WithContent: true}
}

// Index is a read-only view over a pre-built lexical index. All analysis and
// scoring happens inside the wrapped library.
type Index interface {
	// Search returns up to limit documents matching the query, ranked by
	// the backend's BM25 implementation. An empty query returns no results.
	Search(ctx context.Context, query string, limit int) ([]*Result, error)

	// DocCount returns the number of documents in the index.
	DocCount() (int, error)

	// AllIDs returns all document IDs in the index.
	AllIDs(ctx context.Context) ([]string, error)

	// Stats returns index statistics.
	Stats() *IndexStats

	// Close closes the index. Idempotent.
	Close() error
}
