package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexstore/lexstore/internal/docstore"
	lexerrors "github.com/lexstore/lexstore/internal/errors"
	"github.com/lexstore/lexstore/internal/retriever"
	"github.com/lexstore/lexstore/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	docs := []*store.Document{
		{ID: "1", Content: "the quick brown fox jumps over the lazy dog",
			Meta: map[string]any{"type": "fable"}},
		{ID: "2", Content: "a fox running through the forest"},
		{ID: "3", Content: "dogs are loyal companions and great runners"},
	}
	_, err := store.Build(context.Background(), dir,
		store.StreamDocuments(docs), store.DefaultBuildOptions())
	require.NoError(t, err)

	ds, err := docstore.New(docstore.DefaultOptions(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })

	r, err := retriever.New(ds, retriever.Options{})
	require.NoError(t, err)

	srv, err := NewServer(r, ds)
	require.NoError(t, err)
	return srv
}

func TestNewServer_RequiresComponents(t *testing.T) {
	_, err := NewServer(nil, nil)
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeInvalidInput, lexerrors.GetCode(err))
}

func TestNewServer_ExposesMCPInstance(t *testing.T) {
	srv := newTestServer(t)
	assert.NotNil(t, srv.MCPServer())
}

func TestRetrieveHandler_ReturnsRankedDocuments(t *testing.T) {
	// Given: a server over a three-document corpus
	srv := newTestServer(t)

	// When: retrieving for a query that matches two documents
	_, out, err := srv.mcpRetrieveHandler(context.Background(), nil,
		RetrieveInput{Query: "fox"})

	// Then: both matches come back with content and scores
	require.NoError(t, err)
	require.Len(t, out.Documents, 2)
	for _, d := range out.Documents {
		assert.Contains(t, []string{"1", "2"}, d.ID)
		assert.NotEmpty(t, d.Content)
		assert.Greater(t, d.Score, 0.0)
	}
}

func TestRetrieveHandler_HonorsTopK(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.mcpRetrieveHandler(context.Background(), nil,
		RetrieveInput{Query: "fox", TopK: 1})

	require.NoError(t, err)
	assert.Len(t, out.Documents, 1)
}

func TestRetrieveHandler_EmptyQuery(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.mcpRetrieveHandler(context.Background(), nil,
		RetrieveInput{Query: ""})

	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeQueryEmpty, lexerrors.GetCode(err))
}

func TestRetrieveHandler_NoMatches(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.mcpRetrieveHandler(context.Background(), nil,
		RetrieveInput{Query: "zeppelin"})

	require.NoError(t, err)
	assert.Empty(t, out.Documents)
}

func TestCorpusInfoHandler_ReportsIndexFacts(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.mcpCorpusInfoHandler(context.Background(), nil, CorpusInfoInput{})

	require.NoError(t, err)
	assert.Equal(t, "bleve", out.Backend)
	assert.Equal(t, "english", out.Language)
	assert.Equal(t, 3, out.DocumentCount)
	assert.Greater(t, out.SizeBytes, int64(0))
	assert.NotEmpty(t, out.BuiltAt)
}
