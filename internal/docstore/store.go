package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
	"github.com/lexstore/lexstore/internal/pipeline"
	"github.com/lexstore/lexstore/internal/store"
)

// TypeName is the registered component type of the BM25 document store.
const TypeName = "lexstore.BM25DocumentStore"

func init() {
	pipeline.RegisterStore(TypeName, func(params map[string]any) (pipeline.DocumentStore, error) {
		var opts Options
		if err := pipeline.DecodeParams(params, &opts); err != nil {
			return nil, err
		}
		return New(opts)
	})
}

// Options configures a BM25 document store. The zero value is not usable;
// Path is required.
type Options struct {
	// Path is the corpus directory holding the pre-built index.
	Path string `json:"path"`

	// LoadCorpus requests stored document content (and metadata) on search
	// hits. When false, hits carry bare document IDs.
	LoadCorpus bool `json:"load_corpus"`

	// MMap opens the index through read-only memory-mapped segments where
	// the backend supports it.
	MMap bool `json:"mmap"`

	// Language names the stemmer language the index was built with. It is
	// recorded for component serialization; the analyzer itself is baked
	// into the index at build time.
	Language string `json:"language"`
}

// DefaultOptions returns the default store options for a corpus directory.
func DefaultOptions(path string) Options {
	return Options{
		Path:       path,
		LoadCorpus: true,
		MMap:       true,
		Language:   store.DefaultLanguage,
	}
}

// BM25DocumentStore is a read-only document store over a pre-built lexical
// index. Ranking is delegated entirely to the wrapped backend.
type BM25DocumentStore struct {
	opts Options

	mu       sync.RWMutex
	idx      store.Index
	manifest *store.Manifest
	closed   bool
}

// Compile-time contract check.
var _ pipeline.DocumentStore = (*BM25DocumentStore)(nil)

// New opens the index under opts.Path and returns a store bound to it.
func New(opts Options) (*BM25DocumentStore, error) {
	if opts.Path == "" {
		return nil, lexerrors.ValidationError("document store requires a corpus path", nil)
	}
	if opts.Language == "" {
		opts.Language = store.DefaultLanguage
	}
	if !store.SupportedLanguage(opts.Language) {
		return nil, lexerrors.New(lexerrors.ErrCodeInvalidLanguage,
			fmt.Sprintf("unsupported stemmer language %q", opts.Language), nil)
	}

	idx, manifest, err := store.Open(opts.Path, store.OpenOptions{
		MMap:        opts.MMap,
		WithContent: opts.LoadCorpus,
	})
	if err != nil {
		return nil, err
	}

	if manifest != nil && manifest.Language != "" && manifest.Language != opts.Language {
		slog.Warn("store_language_mismatch",
			"configured", opts.Language,
			"index", manifest.Language,
			"path", opts.Path)
	}

	slog.Debug("document_store_opened",
		"path", opts.Path,
		"load_corpus", opts.LoadCorpus,
		"mmap", opts.MMap)

	return &BM25DocumentStore{opts: opts, idx: idx, manifest: manifest}, nil
}

// Options returns the options the store was constructed with.
func (s *BM25DocumentStore) Options() Options {
	return s.opts
}

// Manifest returns the build manifest of the underlying corpus, or nil when
// the corpus directory carries none.
func (s *BM25DocumentStore) Manifest() *store.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// Stats returns statistics of the underlying index.
func (s *BM25DocumentStore) Stats() (*store.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, s.closedErr()
	}
	stats := s.idx.Stats()
	if stats.Language == "" && s.manifest != nil {
		stats.Language = s.manifest.Language
	}
	return stats, nil
}

// CountDocuments returns the document count recorded in the wrapped index.
func (s *BM25DocumentStore) CountDocuments(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, s.closedErr()
	}
	return s.idx.DocCount()
}

// FilterDocuments is not supported: the wrapped backends expose ranked
// search, not filtered listing. The filter is still validated so that
// malformed filters surface as validation errors rather than being masked
// by the capability error.
func (s *BM25DocumentStore) FilterDocuments(ctx context.Context, filter *pipeline.Filter) ([]pipeline.Document, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}
	return nil, lexerrors.NotImplementedError("filter_documents")
}

// WriteDocuments always fails: the index is immutable once built.
func (s *BM25DocumentStore) WriteDocuments(ctx context.Context, docs []pipeline.Document, policy pipeline.DuplicatePolicy) (int, error) {
	return 0, lexerrors.ImmutableIndexError("write_documents")
}

// DeleteDocuments always fails: the index is immutable once built.
func (s *BM25DocumentStore) DeleteDocuments(ctx context.Context, ids []string) error {
	return lexerrors.ImmutableIndexError("delete_documents")
}

// Search runs a ranked query against the wrapped index and converts hits to
// pipeline documents. Content and metadata are present only when the store
// was opened with LoadCorpus.
func (s *BM25DocumentStore) Search(ctx context.Context, query string, topK int) ([]pipeline.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, s.closedErr()
	}

	results, err := s.idx.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	docs := make([]pipeline.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, pipeline.Document{
			ID:      r.DocID,
			Content: r.Content,
			Meta:    r.Meta,
			Score:   r.Score,
		})
	}
	return docs, nil
}

// Reload reopens the index from disk, picking up a rebuilt corpus. The old
// index is closed only after the replacement opened successfully, so a
// failed reload leaves the store serving the previous index.
func (s *BM25DocumentStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closedErr()
	}

	idx, manifest, err := store.Open(s.opts.Path, store.OpenOptions{
		MMap:        s.opts.MMap,
		WithContent: s.opts.LoadCorpus,
	})
	if err != nil {
		return lexerrors.Wrap(lexerrors.ErrCodeIndexNotFound, err).
			WithDetail("path", s.opts.Path)
	}

	old := s.idx
	s.idx = idx
	s.manifest = manifest
	if err := old.Close(); err != nil {
		slog.Warn("stale_index_close_failed", "path", s.opts.Path, "error", err)
	}

	slog.Info("document_store_reloaded", "path", s.opts.Path)
	return nil
}

// MarshalConfig serializes the store for pipeline persistence.
func (s *BM25DocumentStore) MarshalConfig() (pipeline.ComponentConfig, error) {
	params, err := pipeline.EncodeParams(s.opts)
	if err != nil {
		return pipeline.ComponentConfig{}, err
	}
	return pipeline.ComponentConfig{Type: TypeName, InitParameters: params}, nil
}

// Close closes the underlying index. Idempotent.
func (s *BM25DocumentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.idx.Close()
}

func (s *BM25DocumentStore) closedErr() error {
	return lexerrors.New(lexerrors.ErrCodeIndexClosed,
		"document store is closed", nil).WithDetail("path", s.opts.Path)
}
