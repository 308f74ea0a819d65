// Package docstore adapts a pre-built lexical index into the pipeline
// document-store contract. The adapter is strictly read-only: the index is
// built offline, and every mutation through the store contract fails with an
// immutable-index error. Filtered listing is not supported by the wrapped
// backends and returns a not-implemented error.
package docstore
