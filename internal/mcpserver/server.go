// Package mcpserver exposes lexical retrieval over the Model Context
// Protocol so AI clients can query a pre-built corpus through stdio.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexstore/lexstore/internal/docstore"
	lexerrors "github.com/lexstore/lexstore/internal/errors"
	"github.com/lexstore/lexstore/internal/retriever"
	"github.com/lexstore/lexstore/pkg/version"
)

// Server is the MCP server for lexstore. It bridges AI clients with a
// read-only BM25 corpus through the retriever.
type Server struct {
	mcp       *mcp.Server
	retriever *retriever.BM25Retriever
	store     *docstore.BM25DocumentStore
	logger    *slog.Logger
}

// RetrieveInput defines the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the search query to rank documents against"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of documents to return, default 10"`
}

// RetrieveOutput defines the output schema for the retrieve tool.
type RetrieveOutput struct {
	Documents []RetrievedDocument `json:"documents" jsonschema:"ranked documents, best match first"`
}

// RetrievedDocument is a single ranked hit.
type RetrievedDocument struct {
	ID      string         `json:"id" jsonschema:"document identifier"`
	Content string         `json:"content,omitempty" jsonschema:"document text, empty when the corpus was opened without content"`
	Meta    map[string]any `json:"meta,omitempty" jsonschema:"document metadata"`
	Score   float64        `json:"score" jsonschema:"BM25 relevance score"`
}

// CorpusInfoInput defines the (empty) input schema for the corpus_info tool.
type CorpusInfoInput struct{}

// CorpusInfoOutput defines the output schema for the corpus_info tool.
type CorpusInfoOutput struct {
	Path          string `json:"path" jsonschema:"corpus directory"`
	Backend       string `json:"backend" jsonschema:"index backend: bleve or sqlite"`
	Language      string `json:"language,omitempty" jsonschema:"stemmer language the index was built with"`
	DocumentCount int    `json:"document_count" jsonschema:"number of documents in the index"`
	SizeBytes     int64  `json:"size_bytes" jsonschema:"on-disk size of the index"`
	BuiltAt       string `json:"built_at,omitempty" jsonschema:"when the index was built, RFC 3339"`
}

// NewServer creates an MCP server over the given retriever and its store.
func NewServer(r *retriever.BM25Retriever, s *docstore.BM25DocumentStore) (*Server, error) {
	if r == nil {
		return nil, lexerrors.ValidationError("retriever is required", nil)
	}
	if s == nil {
		return nil, lexerrors.ValidationError("document store is required", nil)
	}

	srv := &Server{
		retriever: r,
		store:     s,
		logger:    slog.Default(),
	}

	srv.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "lexstore",
			Version: version.Version,
		},
		nil,
	)
	srv.registerTools()

	return srv, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "retrieve",
		Description: "Rank corpus documents against a query using BM25 and return the best matches. The corpus is pre-built and read-only.",
	}, s.mcpRetrieveHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "corpus_info",
		Description: "Report which corpus is being served: backend, language, document count, and on-disk size.",
	}, s.mcpCorpusInfoHandler)

	s.logger.Info("mcp_tools_registered", slog.Int("count", 2))
}

// mcpRetrieveHandler is the MCP SDK handler for the retrieve tool.
func (s *Server) mcpRetrieveHandler(ctx context.Context, req *mcp.CallToolRequest, input RetrieveInput) (
	*mcp.CallToolResult,
	RetrieveOutput,
	error,
) {
	topK := input.TopK
	if topK <= 0 {
		topK = s.retriever.TopK()
	}

	docs, err := s.retriever.RunTopK(ctx, input.Query, topK)
	if err != nil {
		s.logger.Warn("mcp_retrieve_failed",
			slog.String("query", input.Query),
			slog.String("error", err.Error()))
		return nil, RetrieveOutput{}, err
	}

	out := RetrieveOutput{Documents: make([]RetrievedDocument, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, RetrievedDocument{
			ID:      d.ID,
			Content: d.Content,
			Meta:    d.Meta,
			Score:   d.Score,
		})
	}
	return nil, out, nil
}

// mcpCorpusInfoHandler is the MCP SDK handler for the corpus_info tool.
func (s *Server) mcpCorpusInfoHandler(ctx context.Context, req *mcp.CallToolRequest, input CorpusInfoInput) (
	*mcp.CallToolResult,
	CorpusInfoOutput,
	error,
) {
	stats, err := s.store.Stats()
	if err != nil {
		return nil, CorpusInfoOutput{}, err
	}

	out := CorpusInfoOutput{
		Path:          s.store.Options().Path,
		Backend:       string(stats.Backend),
		Language:      stats.Language,
		DocumentCount: stats.DocumentCount,
		SizeBytes:     stats.SizeBytes,
	}
	if m := s.store.Manifest(); m != nil && !m.BuiltAt.IsZero() {
		out.BuiltAt = m.BuiltAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return nil, out, nil
}

// Serve runs the server over stdio until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("mcp_server_stopped")
	return nil
}
