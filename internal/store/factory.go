package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lexerrors "github.com/lexstore/lexstore/internal/errors"
)

// DetectBackend detects which backend a corpus directory holds based on
// on-disk shape. Returns an empty string if no index exists.
func DetectBackend(dir string) Backend {
	if dirExists(filepath.Join(dir, BleveIndexName)) {
		return BackendBleve
	}
	if fileExists(filepath.Join(dir, SQLiteIndexName)) {
		return BackendSQLite
	}
	return ""
}

// IndexPath returns the path of the index artifact for a backend inside a
// corpus directory.
func IndexPath(dir string, backend Backend) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(dir, SQLiteIndexName)
	default:
		return filepath.Join(dir, BleveIndexName)
	}
}

// ReadManifest reads the build manifest from a corpus directory.
// Returns nil without error when no manifest exists; older corpus dirs from
// hand-built indexes may lack one.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, lexerrors.New(lexerrors.ErrCodeIndexCorrupt,
			"manifest.json is not valid JSON", err).WithDetail("dir", dir)
	}
	return &m, nil
}

// writeManifest persists the build manifest into a corpus directory.
func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644)
}

// Open opens the pre-built index inside a corpus directory, choosing the
// backend from the manifest when present and from on-disk shape otherwise.
func Open(dir string, opts OpenOptions) (Index, *Manifest, error) {
	if !dirExists(dir) {
		return nil, nil, lexerrors.New(lexerrors.ErrCodeCorpusNotFound,
			fmt.Sprintf("corpus directory %s does not exist", dir), nil).
			WithSuggestion("build a corpus with 'lexstore build'")
	}

	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, nil, err
	}

	backend := DetectBackend(dir)
	if manifest != nil && manifest.Backend != "" {
		backend = manifest.Backend
	}
	if backend == "" {
		return nil, nil, lexerrors.New(lexerrors.ErrCodeIndexNotFound,
			fmt.Sprintf("no index found under %s", dir), nil).
			WithSuggestion("build one with 'lexstore build'")
	}

	var idx Index
	switch backend {
	case BackendBleve:
		idx, err = OpenBleveIndex(IndexPath(dir, BackendBleve), opts)
	case BackendSQLite:
		idx, err = OpenSQLiteIndex(IndexPath(dir, BackendSQLite), opts)
	default:
		return nil, nil, lexerrors.New(lexerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown index backend %q (valid options: bleve, sqlite)", backend), nil)
	}
	if err != nil {
		return nil, nil, err
	}

	return idx, manifest, nil
}

// fileExists checks if a file exists at the given path.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirExists checks if a directory exists at the given path.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
