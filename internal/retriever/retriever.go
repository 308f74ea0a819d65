// Package retriever runs ranked queries against a BM25 document store and
// returns pipeline documents. A small LRU cache short-circuits repeated
// queries; it is dropped whenever the underlying store reloads.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lexstore/lexstore/internal/docstore"
	lexerrors "github.com/lexstore/lexstore/internal/errors"
	"github.com/lexstore/lexstore/internal/pipeline"
)

// TypeName is the serialized component type of the BM25 retriever.
const TypeName = "lexstore.BM25Retriever"

// DefaultTopK is the number of documents returned when no limit is set.
const DefaultTopK = 10

// DefaultCacheSize is the number of query results kept in the LRU cache.
const DefaultCacheSize = 128

// Options configures a BM25 retriever.
type Options struct {
	// TopK is the default number of documents Run returns. Zero means
	// DefaultTopK; negative values are rejected.
	TopK int `json:"top_k"`

	// CacheSize bounds the query result cache. Zero means
	// DefaultCacheSize; negative disables caching.
	CacheSize int `json:"cache_size,omitempty"`
}

// BM25Retriever retrieves ranked documents from an immutable lexical index
// through its document store.
type BM25Retriever struct {
	store *docstore.BM25DocumentStore
	topK  int
	cache *lru.Cache[string, []pipeline.Document]
}

// New creates a retriever over the given store.
func New(store *docstore.BM25DocumentStore, opts Options) (*BM25Retriever, error) {
	if store == nil {
		return nil, lexerrors.ValidationError("retriever requires a document store", nil)
	}
	if opts.TopK < 0 {
		return nil, lexerrors.New(lexerrors.ErrCodeInvalidTopK,
			fmt.Sprintf("top_k must be positive, got %d", opts.TopK), nil)
	}
	topK := opts.TopK
	if topK == 0 {
		topK = DefaultTopK
	}

	r := &BM25Retriever{store: store, topK: topK}

	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, []pipeline.Document](size)
		if err != nil {
			return nil, lexerrors.InternalError("failed to create query cache", err)
		}
		r.cache = cache
	}

	return r, nil
}

// TopK returns the retriever's default result limit.
func (r *BM25Retriever) TopK() int {
	return r.topK
}

// Run retrieves up to the configured top-k documents for the query.
func (r *BM25Retriever) Run(ctx context.Context, query string) ([]pipeline.Document, error) {
	return r.RunTopK(ctx, query, r.topK)
}

// RunTopK retrieves up to topK documents for the query, overriding the
// configured default. topK must be positive.
func (r *BM25Retriever) RunTopK(ctx context.Context, query string, topK int) ([]pipeline.Document, error) {
	if topK <= 0 {
		return nil, lexerrors.New(lexerrors.ErrCodeInvalidTopK,
			fmt.Sprintf("top_k must be positive, got %d", topK), nil)
	}
	if strings.TrimSpace(query) == "" {
		return nil, lexerrors.New(lexerrors.ErrCodeQueryEmpty, "query is empty", nil)
	}

	key := cacheKey(query, topK)
	if r.cache != nil {
		if docs, ok := r.cache.Get(key); ok {
			slog.Debug("retriever_cache_hit", "query", query, "top_k", topK)
			return docs, nil
		}
	}

	start := time.Now()
	docs, err := r.store.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	slog.Debug("retriever_query_complete",
		"query", query,
		"top_k", topK,
		"results", len(docs),
		"duration_ms", time.Since(start).Milliseconds())

	if r.cache != nil {
		r.cache.Add(key, docs)
	}
	return docs, nil
}

// InvalidateCache drops all cached query results. Wire this to the store's
// reload watcher so a rebuilt index never serves stale hits.
func (r *BM25Retriever) InvalidateCache() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// MarshalConfig serializes the retriever together with its document store,
// so a pipeline definition round-trips through UnmarshalConfig.
func (r *BM25Retriever) MarshalConfig() (pipeline.ComponentConfig, error) {
	storeCfg, err := r.store.MarshalConfig()
	if err != nil {
		return pipeline.ComponentConfig{}, err
	}
	return pipeline.ComponentConfig{
		Type: TypeName,
		InitParameters: map[string]any{
			"document_store": map[string]any{
				"type":            storeCfg.Type,
				"init_parameters": storeCfg.InitParameters,
			},
			"top_k": r.topK,
		},
	}, nil
}

// UnmarshalConfig reconstructs a retriever (and its document store) from a
// serialized component config produced by MarshalConfig.
func UnmarshalConfig(cfg pipeline.ComponentConfig) (*BM25Retriever, error) {
	if cfg.Type != TypeName {
		return nil, lexerrors.ValidationError(
			fmt.Sprintf("expected component type %q, got %q", TypeName, cfg.Type), nil)
	}

	var params struct {
		DocumentStore pipeline.ComponentConfig `json:"document_store"`
		TopK          int                      `json:"top_k"`
	}
	if err := pipeline.DecodeParams(cfg.InitParameters, &params); err != nil {
		return nil, err
	}

	ds, err := pipeline.StoreFromConfig(params.DocumentStore)
	if err != nil {
		return nil, err
	}
	bs, ok := ds.(*docstore.BM25DocumentStore)
	if !ok {
		ds.Close()
		return nil, lexerrors.ValidationError(
			fmt.Sprintf("retriever requires a %s document store", docstore.TypeName), nil)
	}

	r, err := New(bs, Options{TopK: params.TopK})
	if err != nil {
		bs.Close()
		return nil, err
	}
	return r, nil
}

func cacheKey(query string, topK int) string {
	return fmt.Sprintf("%d\x00%s", topK, query)
}
