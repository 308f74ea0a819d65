package pipeline

// Document is the unit of content exchanged between pipeline components.
type Document struct {
	// ID uniquely identifies the document within a store.
	ID string `json:"id"`

	// Content is the document text. May be empty when the store was opened
	// without corpus loading, in which case only the ID is meaningful.
	Content string `json:"content,omitempty"`

	// Meta carries arbitrary document metadata.
	Meta map[string]any `json:"meta,omitempty"`

	// Score is the relevance score assigned at retrieval time.
	// Zero for documents that did not pass through a retriever.
	Score float64 `json:"score,omitempty"`
}
