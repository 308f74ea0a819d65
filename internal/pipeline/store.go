package pipeline

import (
	"context"

	"github.com/lexstore/lexstore/internal/errors"
)

// DuplicatePolicy controls how a store treats documents whose ID already exists.
type DuplicatePolicy string

const (
	// DuplicatePolicyNone applies the store's default behavior.
	DuplicatePolicyNone DuplicatePolicy = "none"
	// DuplicatePolicySkip keeps the existing document and ignores the new one.
	DuplicatePolicySkip DuplicatePolicy = "skip"
	// DuplicatePolicyOverwrite removes the old document and writes the new one.
	DuplicatePolicyOverwrite DuplicatePolicy = "overwrite"
	// DuplicatePolicyFail raises an error on duplicates.
	DuplicatePolicyFail DuplicatePolicy = "fail"
)

// Contract-level errors shared by all document stores.
var (
	// ErrDuplicateDocument is returned when a write hits an existing ID
	// under DuplicatePolicyFail.
	ErrDuplicateDocument = errors.New(errors.ErrCodeDuplicateDocument,
		"document with this ID already exists", nil)

	// ErrMissingDocument is returned when a delete names an ID that is not
	// present in the store.
	ErrMissingDocument = errors.New(errors.ErrCodeMissingDocument,
		"no document with this ID exists", nil)
)

// DocumentStore is the storage contract pipeline components depend on.
// Implementations may reject operations they cannot support; an adapter over
// an immutable index rejects every mutation.
type DocumentStore interface {
	// CountDocuments returns how many documents are present in the store.
	CountDocuments(ctx context.Context) (int, error)

	// FilterDocuments returns the documents matching the given filter.
	// A nil filter matches all documents.
	FilterDocuments(ctx context.Context, filter *Filter) ([]Document, error)

	// WriteDocuments writes (or overwrites) documents into the store and
	// returns the number written. Behavior on duplicate IDs is governed by
	// the policy.
	WriteDocuments(ctx context.Context, docs []Document, policy DuplicatePolicy) (int, error)

	// DeleteDocuments deletes all documents with a matching ID.
	DeleteDocuments(ctx context.Context, ids []string) error

	// MarshalConfig serializes the store's init parameters for pipeline
	// persistence. The result round-trips through FromConfig.
	MarshalConfig() (ComponentConfig, error)

	// Close releases store resources.
	Close() error
}
