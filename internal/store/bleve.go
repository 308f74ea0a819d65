package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

// BleveIndex is a read-only view over a pre-built Bleve v2 index.
// Analysis and BM25 scoring happen inside Bleve; this type only forwards
// queries and reads stored fields back.
type BleveIndex struct {
	mu          sync.RWMutex
	index       bleve.Index
	path        string
	withContent bool
	closed      bool
}

// Verify interface implementation at compile time
var _ Index = (*BleveIndex)(nil)

// validateBleveIntegrity checks that a Bleve index directory looks sound
// before opening. The index is never repaired or cleared: it is a pre-built
// artifact this process does not own.
func validateBleveIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return lexerrors.New(lexerrors.ErrCodeIndexNotFound,
			fmt.Sprintf("no Bleve index at %s", path), err).
			WithSuggestion("build one with 'lexstore build'")
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"index_meta.json missing", err).WithDetail("path", path)
	}
	if err != nil {
		return lexerrors.Wrap(lexerrors.ErrCodeIndexCorrupt, err)
	}
	if info.Size() == 0 {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"index_meta.json is empty", nil).WithDetail("path", path)
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return lexerrors.Wrap(lexerrors.ErrCodeIndexCorrupt, err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"index_meta.json is not valid JSON", err).WithDetail("path", path)
	}

	return nil
}

// OpenBleveIndex opens a pre-built Bleve index read-only.
// With opts.MMap the index is opened through Bleve's read-only mode, backed
// by memory-mapped segment files.
func OpenBleveIndex(path string, opts OpenOptions) (*BleveIndex, error) {
	if err := validateBleveIntegrity(path); err != nil {
		return nil, err
	}

	var (
		idx bleve.Index
		err error
	)
	if opts.MMap {
		idx, err = bleve.OpenUsing(path, map[string]interface{}{
			"read_only": true,
		})
	} else {
		idx, err = bleve.Open(path)
	}
	if err != nil {
		if err == bleve.ErrorIndexPathDoesNotExist {
			return nil, lexerrors.New(lexerrors.ErrCodeIndexNotFound,
				fmt.Sprintf("no Bleve index at %s", path), err)
		}
		return nil, lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"failed to open Bleve index", err).WithDetail("path", path)
	}

	count, _ := idx.DocCount()
	slog.Debug("bleve_index_opened",
		slog.String("path", path),
		slog.Bool("mmap", opts.MMap),
		slog.Uint64("doc_count", count))

	return &BleveIndex{
		index:       idx,
		path:        path,
		withContent: opts.WithContent,
	}, nil
}

// Search returns documents matching the query, scored by Bleve's BM25.
// The query is analyzed by the index's own analyzer, so stemming matches
// what was applied at build time.
func (b *BleveIndex) Search(ctx context.Context, queryStr string, limit int) ([]*Result, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexClosed, "index is closed", nil)
	}

	if strings.TrimSpace(queryStr) == "" {
		return []*Result{}, nil
	}

	matchQuery := bleve.NewMatchQuery(queryStr)
	matchQuery.SetField(fieldContent)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	if b.withContent {
		searchRequest.Fields = []string{fieldContent, fieldMeta}
	}

	result, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, lexerrors.New(lexerrors.ErrCodeSearchFailed, "search failed", err)
	}

	results := make([]*Result, 0, len(result.Hits))
	for _, hit := range result.Hits {
		r := &Result{
			DocID: hit.ID,
			Score: hit.Score,
		}
		if b.withContent {
			if content, ok := hit.Fields[fieldContent].(string); ok {
				r.Content = content
			}
			if metaJSON, ok := hit.Fields[fieldMeta].(string); ok && metaJSON != "" {
				var meta map[string]any
				if err := json.Unmarshal([]byte(metaJSON), &meta); err == nil {
					r.Meta = meta
				}
			}
		}
		results = append(results, r)
	}

	return results, nil
}

// DocCount returns the number of documents in the index.
func (b *BleveIndex) DocCount() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, lexerrors.New(lexerrors.ErrCodeIndexClosed, "index is closed", nil)
	}

	count, err := b.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

// AllIDs returns all document IDs in the index.
func (b *BleveIndex) AllIDs(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexClosed, "index is closed", nil)
	}

	docCount, _ := b.index.DocCount()

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(docCount)
	req.Fields = []string{} // IDs only

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list document IDs: %w", err)
	}

	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Stats returns index statistics.
func (b *BleveIndex) Stats() *IndexStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return &IndexStats{Backend: BackendBleve}
	}

	count, _ := b.index.DocCount()
	return &IndexStats{
		DocumentCount: int(count),
		Backend:       BackendBleve,
		SizeBytes:     dirSize(b.path),
	}
}

// Close closes the index. Idempotent.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

// dirSize returns the total size of all files under dir, best effort.
func dirSize(dir string) int64 {
	var size int64
	_ = filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
