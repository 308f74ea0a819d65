package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
	"github.com/lexstore/lexstore/internal/pipeline"
	"github.com/lexstore/lexstore/internal/store"
)

func buildCorpus(t *testing.T, backend store.Backend) string {
	t.Helper()
	dir := t.TempDir()

	docs := []*store.Document{
		{ID: "1", Content: "the quick brown fox jumps over the lazy dog",
			Meta: map[string]any{"type": "fable"}},
		{ID: "2", Content: "a fox running through the forest"},
		{ID: "3", Content: "dogs are loyal companions and great runners"},
	}

	opts := store.DefaultBuildOptions()
	opts.Backend = backend
	_, err := store.Build(context.Background(), dir, store.StreamDocuments(docs), opts)
	require.NoError(t, err)
	return dir
}

func openStore(t *testing.T, dir string) *BM25DocumentStore {
	t.Helper()
	s, err := New(DefaultOptions(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeInvalidInput, lexerrors.GetCode(err))
}

func TestNew_RejectsUnknownLanguage(t *testing.T) {
	opts := DefaultOptions(t.TempDir())
	opts.Language = "klingon"

	_, err := New(opts)
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeInvalidLanguage, lexerrors.GetCode(err))
}

func TestNew_MissingCorpus(t *testing.T) {
	_, err := New(DefaultOptions("/nonexistent/corpus"))
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeCorpusNotFound, lexerrors.GetCode(err))
}

func TestCountDocuments(t *testing.T) {
	// Given a store over a three-document corpus
	s := openStore(t, buildCorpus(t, store.BackendBleve))

	// When counting documents
	count, err := s.CountDocuments(context.Background())

	// Then the wrapped index's count is reported
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestWriteDocuments_AlwaysImmutable(t *testing.T) {
	s := openStore(t, buildCorpus(t, store.BackendBleve))

	docs := []pipeline.Document{{ID: "4", Content: "new"}}
	for _, policy := range []pipeline.DuplicatePolicy{
		pipeline.DuplicatePolicyNone,
		pipeline.DuplicatePolicySkip,
		pipeline.DuplicatePolicyOverwrite,
		pipeline.DuplicatePolicyFail,
	} {
		n, err := s.WriteDocuments(context.Background(), docs, policy)
		assert.Zero(t, n)
		assert.Equal(t, lexerrors.ErrCodeImmutableIndex, lexerrors.GetCode(err),
			"policy %s", policy)
	}
}

func TestWriteDocuments_EmptySliceStillImmutable(t *testing.T) {
	s := openStore(t, buildCorpus(t, store.BackendBleve))

	_, err := s.WriteDocuments(context.Background(), nil, pipeline.DuplicatePolicyNone)
	assert.Equal(t, lexerrors.ErrCodeImmutableIndex, lexerrors.GetCode(err))
}

func TestDeleteDocuments_AlwaysImmutable(t *testing.T) {
	s := openStore(t, buildCorpus(t, store.BackendBleve))

	err := s.DeleteDocuments(context.Background(), []string{"1"})
	assert.Equal(t, lexerrors.ErrCodeImmutableIndex, lexerrors.GetCode(err))

	err = s.DeleteDocuments(context.Background(), nil)
	assert.Equal(t, lexerrors.ErrCodeImmutableIndex, lexerrors.GetCode(err))
}

func TestFilterDocuments_NotImplemented(t *testing.T) {
	s := openStore(t, buildCorpus(t, store.BackendBleve))

	_, err := s.FilterDocuments(context.Background(), nil)
	assert.Equal(t, lexerrors.ErrCodeNotImplemented, lexerrors.GetCode(err))

	filter := &pipeline.Filter{Field: "meta.type", Operator: "==", Value: "fable"}
	_, err = s.FilterDocuments(context.Background(), filter)
	assert.Equal(t, lexerrors.ErrCodeNotImplemented, lexerrors.GetCode(err))
}

func TestFilterDocuments_ValidatesBeforeRejecting(t *testing.T) {
	s := openStore(t, buildCorpus(t, store.BackendBleve))

	// A malformed filter surfaces as a validation error, not as the
	// capability error.
	filter := &pipeline.Filter{Field: "meta.type", Operator: "~=", Value: "fable"}
	_, err := s.FilterDocuments(context.Background(), filter)
	assert.Equal(t, lexerrors.ErrCodeInvalidFilter, lexerrors.GetCode(err))
}

func TestSearch_RankedResults(t *testing.T) {
	for _, backend := range []store.Backend{store.BackendBleve, store.BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			s := openStore(t, buildCorpus(t, backend))

			docs, err := s.Search(context.Background(), "fox", 10)
			require.NoError(t, err)

			require.Len(t, docs, 2)
			for _, d := range docs {
				assert.Contains(t, []string{"1", "2"}, d.ID)
				assert.NotEmpty(t, d.Content)
				assert.Greater(t, d.Score, 0.0)
			}
		})
	}
}

func TestSearch_WithoutCorpusContent(t *testing.T) {
	dir := buildCorpus(t, store.BackendBleve)

	opts := DefaultOptions(dir)
	opts.LoadCorpus = false
	s, err := New(opts)
	require.NoError(t, err)
	defer s.Close()

	docs, err := s.Search(context.Background(), "fox", 10)
	require.NoError(t, err)

	require.NotEmpty(t, docs)
	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
		assert.Empty(t, d.Content)
	}
}

func TestReload_PicksUpRebuiltIndex(t *testing.T) {
	dir := buildCorpus(t, store.BackendBleve)
	s := openStore(t, dir)

	count, err := s.CountDocuments(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Rebuild the corpus with a single document, then reload.
	docs := []*store.Document{{ID: "only", Content: "single document corpus"}}
	_, err = store.Build(context.Background(), dir,
		store.StreamDocuments(docs), store.DefaultBuildOptions())
	require.NoError(t, err)

	require.NoError(t, s.Reload())

	count, err = s.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarshalConfig_RoundTrip(t *testing.T) {
	dir := buildCorpus(t, store.BackendBleve)

	opts := DefaultOptions(dir)
	opts.LoadCorpus = false
	opts.Language = "german"
	s, err := New(opts)
	require.NoError(t, err)
	defer s.Close()

	cfg, err := s.MarshalConfig()
	require.NoError(t, err)
	assert.Equal(t, TypeName, cfg.Type)
	assert.Equal(t, dir, cfg.InitParameters["path"])
	assert.Equal(t, false, cfg.InitParameters["load_corpus"])
	assert.Equal(t, "german", cfg.InitParameters["language"])

	restored, err := pipeline.StoreFromConfig(cfg)
	require.NoError(t, err)
	defer restored.Close()

	rs, ok := restored.(*BM25DocumentStore)
	require.True(t, ok)
	assert.Equal(t, s.Options(), rs.Options())
}

func TestClose_Idempotent(t *testing.T) {
	s := openStore(t, buildCorpus(t, store.BackendBleve))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.CountDocuments(context.Background())
	assert.Equal(t, lexerrors.ErrCodeIndexClosed, lexerrors.GetCode(err))

	_, err = s.Search(context.Background(), "fox", 5)
	assert.Equal(t, lexerrors.ErrCodeIndexClosed, lexerrors.GetCode(err))
}
