package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

// buildLockName guards a corpus directory against concurrent builds.
const buildLockName = ".build.lock"

// BuildOptions configures an offline index build.
type BuildOptions struct {
	// Backend selects the wrapped index implementation. Default bleve.
	Backend Backend

	// Language is the stemmer language baked into the index analyzer.
	// Default "english". "none" disables stemming.
	Language string

	// BatchSize is the number of documents indexed per batch.
	BatchSize int
}

// DefaultBuildOptions returns the default build options.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Backend:   BackendBleve,
		Language:  DefaultLanguage,
		BatchSize: 256,
	}
}

// indexWriter is the build-time counterpart of Index. Implementations wrap
// the backend library's own write path.
type indexWriter interface {
	writeBatch(ctx context.Context, docs []*Document) error
	close() error
}

// Build constructs a fresh index inside dir from the documents streamed on
// docs, replacing any existing index of the same backend. The corpus
// directory is locked for the duration of the build; a second concurrent
// build fails fast instead of corrupting the artifact.
func Build(ctx context.Context, dir string, docs <-chan *Document, opts BuildOptions) (*Manifest, error) {
	if opts.Backend == "" {
		opts.Backend = BackendBleve
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 256
	}
	if !SupportedLanguage(opts.Language) {
		return nil, lexerrors.New(lexerrors.ErrCodeInvalidLanguage,
			fmt.Sprintf("unsupported stemmer language %q", opts.Language), nil)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, buildLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire build lock: %w", err)
	}
	if !locked {
		return nil, lexerrors.New(lexerrors.ErrCodeBuildLocked,
			fmt.Sprintf("another build is running in %s", dir), nil).
			WithSuggestion("wait for it to finish or remove a stale .build.lock")
	}
	defer func() { _ = lock.Unlock() }()

	writer, err := newIndexWriter(dir, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	slog.Info("index_build_started",
		slog.String("dir", dir),
		slog.String("backend", string(opts.Backend)),
		slog.String("language", opts.Language))

	// Stage 1 groups incoming documents into batches, stage 2 hands each
	// batch to the backend. Either stage failing cancels the other.
	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []*Document, 4)
	var total int

	g.Go(func() error {
		defer close(batches)
		batch := make([]*Document, 0, opts.BatchSize)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case doc, ok := <-docs:
				if !ok {
					if len(batch) > 0 {
						select {
						case batches <- batch:
						case <-gctx.Done():
							return gctx.Err()
						}
					}
					return nil
				}
				if doc.ID == "" {
					return lexerrors.New(lexerrors.ErrCodeInvalidInput,
						"document without an ID cannot be indexed", nil)
				}
				batch = append(batch, doc)
				if len(batch) >= opts.BatchSize {
					select {
					case batches <- batch:
					case <-gctx.Done():
						return gctx.Err()
					}
					batch = make([]*Document, 0, opts.BatchSize)
				}
			}
		}
	})

	g.Go(func() error {
		for batch := range batches {
			if err := writer.writeBatch(gctx, batch); err != nil {
				return err
			}
			total += len(batch)
			slog.Debug("index_batch_written", slog.Int("total", total))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		_ = writer.close()
		return nil, lexerrors.Wrap(lexerrors.ErrCodeBuildFailed, err)
	}

	if err := writer.close(); err != nil {
		return nil, lexerrors.Wrap(lexerrors.ErrCodeBuildFailed, err)
	}

	manifest := &Manifest{
		Backend:  opts.Backend,
		Language: opts.Language,
		DocCount: total,
		BuiltAt:  time.Now().UTC(),
		Version:  ManifestVersion,
	}
	if err := writeManifest(dir, manifest); err != nil {
		return nil, err
	}

	slog.Info("index_build_complete",
		slog.String("dir", dir),
		slog.Int("doc_count", total),
		slog.Duration("elapsed", time.Since(start)))

	return manifest, nil
}

// newIndexWriter creates the backend writer, replacing any existing artifact.
func newIndexWriter(dir string, opts BuildOptions) (indexWriter, error) {
	switch opts.Backend {
	case BackendBleve:
		path := IndexPath(dir, BackendBleve)
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to clear previous index: %w", err)
		}
		return newBleveWriter(path, opts.Language)
	case BackendSQLite:
		path := IndexPath(dir, BackendSQLite)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to clear previous index: %w", err)
		}
		return newSQLiteWriter(path, opts.Language)
	default:
		return nil, lexerrors.New(lexerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown index backend %q (valid options: bleve, sqlite)", opts.Backend), nil)
	}
}

// bleveWriter builds a Bleve index through Bleve's batch API.
type bleveWriter struct {
	index bleve.Index
}

func newBleveWriter(path, language string) (*bleveWriter, error) {
	indexMapping, err := buildIndexMapping(language)
	if err != nil {
		return nil, err
	}

	idx, err := bleve.New(path, indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &bleveWriter{index: idx}, nil
}

func (w *bleveWriter) writeBatch(_ context.Context, docs []*Document) error {
	batch := w.index.NewBatch()
	for _, doc := range docs {
		fields := map[string]interface{}{
			fieldContent: doc.Content,
		}
		if len(doc.Meta) > 0 {
			metaJSON, err := json.Marshal(doc.Meta)
			if err != nil {
				return fmt.Errorf("failed to encode metadata for %s: %w", doc.ID, err)
			}
			fields[fieldMeta] = string(metaJSON)
		}
		if err := batch.Index(doc.ID, fields); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}
	return w.index.Batch(batch)
}

func (w *bleveWriter) close() error {
	return w.index.Close()
}

// sqliteWriter builds an FTS5 database through SQLite's own write path.
type sqliteWriter struct {
	db *sql.DB
}

func newSQLiteWriter(path, language string) (*sqliteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Porter stemming is English-only in FTS5; other languages fall back to
	// plain unicode61 tokenization.
	tokenize := "unicode61"
	if strings.EqualFold(language, DefaultLanguage) || strings.EqualFold(language, "en") {
		tokenize = "porter unicode61"
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- FTS5 virtual table for full-text search with BM25 scoring.
	-- doc_id and meta are UNINDEXED (stored but not searchable).
	CREATE VIRTUAL TABLE IF NOT EXISTS fts_content USING fts5(
		doc_id UNINDEXED,
		content,
		meta UNINDEXED,
		tokenize='%s'
	);

	-- Auxiliary table for document IDs (AllIDs, DocCount).
	CREATE TABLE IF NOT EXISTS doc_ids (
		doc_id TEXT PRIMARY KEY
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`, tokenize)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &sqliteWriter{db: db}, nil
}

func (w *sqliteWriter) writeBatch(ctx context.Context, docs []*Document) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// FTS5 virtual tables don't support REPLACE, so delete first
	deleteStmt, err := tx.PrepareContext(ctx, `DELETE FROM fts_content WHERE doc_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer deleteStmt.Close()

	insertStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fts_content(doc_id, content, meta) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer insertStmt.Close()

	idStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO doc_ids(doc_id) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare ID statement: %w", err)
	}
	defer idStmt.Close()

	for _, doc := range docs {
		var metaJSON string
		if len(doc.Meta) > 0 {
			data, err := json.Marshal(doc.Meta)
			if err != nil {
				return fmt.Errorf("failed to encode metadata for %s: %w", doc.ID, err)
			}
			metaJSON = string(data)
		}

		if _, err := deleteStmt.ExecContext(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to delete existing document %s: %w", doc.ID, err)
		}
		if _, err := insertStmt.ExecContext(ctx, doc.ID, doc.Content, metaJSON); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
		if _, err := idStmt.ExecContext(ctx, doc.ID); err != nil {
			return fmt.Errorf("failed to track document ID %s: %w", doc.ID, err)
		}
	}

	return tx.Commit()
}

func (w *sqliteWriter) close() error {
	return w.db.Close()
}
