// Package pipeline defines the plugin contract lexstore components implement:
// the Document type, the DocumentStore interface with its duplicate policies
// and filter grammar, and config-based component serialization.
//
// The contract is externally shaped. lexstore only supplies adapters that
// satisfy it; it adds no storage or ranking semantics of its own.
package pipeline
