package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexstore/lexstore/internal/pipeline"
	"github.com/lexstore/lexstore/internal/store"
)

func builtCorpusDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	docs := []*store.Document{
		{ID: "1", Content: "the quick brown fox jumps over the lazy dog"},
		{ID: "2", Content: "a fox running through the forest"},
		{ID: "3", Content: "dogs are loyal companions and great runners"},
	}
	_, err := store.Build(context.Background(), dir,
		store.StreamDocuments(docs), store.DefaultBuildOptions())
	require.NoError(t, err)
	return dir
}

func TestSearchCmd_TextOutput(t *testing.T) {
	// Given: a built corpus
	dir := builtCorpusDir(t)

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"fox", "--dir", dir})

	// When: searching
	err := cmd.Execute()

	// Then: matching document IDs and scores are printed
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "1.")
	assert.Contains(t, output, "score")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	dir := builtCorpusDir(t)

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"fox", "--dir", dir, "--format", "json"})

	require.NoError(t, cmd.Execute())

	var docs []pipeline.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	assert.Len(t, docs, 2)
	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
		assert.Greater(t, d.Score, 0.0)
	}
}

func TestSearchCmd_TopKFlag(t *testing.T) {
	dir := builtCorpusDir(t)

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"fox", "--dir", dir, "--top-k", "1", "--format", "json"})

	require.NoError(t, cmd.Execute())

	var docs []pipeline.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	assert.Len(t, docs, 1)
}

func TestSearchCmd_NoMatches(t *testing.T) {
	dir := builtCorpusDir(t)

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"zeppelin", "--dir", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No documents matched")
}

func TestSearchCmd_MissingCorpus(t *testing.T) {
	cmd := newSearchCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"fox", "--dir", t.TempDir()})

	assert.Error(t, cmd.Execute())
}
