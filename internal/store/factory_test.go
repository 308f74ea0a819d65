package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

func TestDetectBackend(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		assert.Equal(t, Backend(""), DetectBackend(t.TempDir()))
	})

	t.Run("bleve", func(t *testing.T) {
		dir := buildTestCorpus(t, BackendBleve)
		assert.Equal(t, BackendBleve, DetectBackend(dir))
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := buildTestCorpus(t, BackendSQLite)
		assert.Equal(t, BackendSQLite, DetectBackend(dir))
	})
}

func TestOpen_UsesManifestBackend(t *testing.T) {
	// Given: a built corpus with a manifest
	dir := buildTestCorpus(t, BackendSQLite)

	// When: opening through the factory
	idx, manifest, err := Open(dir, DefaultOpenOptions())
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	// Then: the manifest round-trips and the right backend is wired
	require.NotNil(t, manifest)
	assert.Equal(t, BackendSQLite, manifest.Backend)
	assert.Equal(t, BackendSQLite, idx.Stats().Backend)
}

func TestOpen_DetectsBackendWithoutManifest(t *testing.T) {
	// Given: a corpus dir whose manifest was removed
	dir := buildTestCorpus(t, BackendBleve)
	require.NoError(t, os.Remove(filepath.Join(dir, ManifestName)))

	// When: opening
	idx, manifest, err := Open(dir, DefaultOpenOptions())
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	// Then: the backend is detected from on-disk shape
	assert.Nil(t, manifest)
	assert.Equal(t, BackendBleve, idx.Stats().Backend)
}

func TestOpen_MissingCorpusDir(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "nope"), DefaultOpenOptions())
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeCorpusNotFound, lexerrors.GetCode(err))
}

func TestOpen_EmptyCorpusDir(t *testing.T) {
	_, _, err := Open(t.TempDir(), DefaultOpenOptions())
	require.Error(t, err)
	assert.Equal(t, lexerrors.ErrCodeIndexNotFound, lexerrors.GetCode(err))
}

func TestOpen_SearchEndToEnd(t *testing.T) {
	// Factory-opened index must behave identically for both backends
	for _, backend := range []Backend{BackendBleve, BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			dir := buildTestCorpus(t, backend)

			idx, _, err := Open(dir, DefaultOpenOptions())
			require.NoError(t, err)
			defer func() { _ = idx.Close() }()

			results, err := idx.Search(context.Background(), "fox", 10)
			require.NoError(t, err)
			assert.Len(t, results, 2)

			count, err := idx.DocCount()
			require.NoError(t, err)
			assert.Equal(t, 3, count)
		})
	}
}
