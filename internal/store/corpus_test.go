package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

func TestReadJSONL_ParsesDocuments(t *testing.T) {
	input := `{"id":"1","content":"first"}

{"id":"2","content":"second","meta":{"lang":"en"}}
`

	docs, err := ReadJSONL(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "first", docs[0].Content)
	assert.Equal(t, "en", docs[1].Meta["lang"])
}

func TestReadJSONL_RejectsInvalidJSON(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader(`{"id":"1"` + "\n"))
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeInvalidInput, lexerrors.GetCode(err))
}

func TestReadJSONL_RejectsMissingID(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader(`{"content":"no id"}`))
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeInvalidInput, lexerrors.GetCode(err))
}

func TestReadCorpusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"id":"a","content":"hello"}`+"\n"), 0o644))

	docs, err := ReadCorpusFile(path)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestReadCorpusFile_Missing(t *testing.T) {
	_, err := ReadCorpusFile(filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeCorpusNotFound, lexerrors.GetCode(err))
}

func TestStreamDocuments_DeliversAllAndCloses(t *testing.T) {
	docs := testDocs()
	ch := StreamDocuments(docs)

	var got []*Document
	for d := range ch {
		got = append(got, d)
	}
	assert.Len(t, got, len(docs))
}
