package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexstore/lexstore/internal/config"
	"github.com/lexstore/lexstore/internal/docstore"
	"github.com/lexstore/lexstore/internal/output"
	"github.com/lexstore/lexstore/internal/retriever"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	corpusDir string
	topK      int
	format    string // "text", "json"
	idsOnly   bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank corpus documents against a query",
		Long: `Search the pre-built index and print the best-matching documents.

Examples:
  lexstore search "error handling" --dir ./corpus
  lexstore search "fox" --dir ./corpus --top-k 5
  lexstore search "fox" --dir ./corpus --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.corpusDir, "dir", "d", ".", "Corpus directory holding the index")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.idsOnly, "ids-only", false, "Skip stored content, print document IDs only")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := config.Load(opts.corpusDir)
	if err != nil {
		return err
	}
	if opts.topK == 0 {
		opts.topK = cfg.Retrieval.TopK
	}

	storeOpts := docstore.Options{
		Path:       opts.corpusDir,
		LoadCorpus: cfg.Retrieval.LoadCorpus && !opts.idsOnly,
		MMap:       cfg.Retrieval.MMap,
		Language:   cfg.Corpus.Language,
	}
	ds, err := docstore.New(storeOpts)
	if err != nil {
		return err
	}
	defer ds.Close()

	r, err := retriever.New(ds, retriever.Options{
		TopK:      opts.topK,
		CacheSize: -1, // one-shot invocation, nothing to cache
	})
	if err != nil {
		return err
	}

	slog.Info("search_started", slog.String("query", query), slog.Int("top_k", opts.topK))

	docs, err := r.Run(ctx, query)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if opts.format == "json" {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(docs) == 0 {
		out.Warning("No documents matched")
		return nil
	}

	for i, d := range docs {
		out.Statusf("", "%d. %s (score %.4f)", i+1, d.ID, d.Score)
		if d.Content != "" {
			out.Dim(truncate(d.Content, 200))
		}
	}
	return nil
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
