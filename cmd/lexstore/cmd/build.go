package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lexstore/lexstore/internal/config"
	"github.com/lexstore/lexstore/internal/output"
	"github.com/lexstore/lexstore/internal/store"
)

// buildOptions holds CLI flags for build.
type buildOptions struct {
	corpusDir string
	backend   string
	language  string
	batchSize int
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <corpus.jsonl>",
		Short: "Build an immutable index from a JSONL corpus",
		Long: `Build an index from a corpus file with one JSON document per line:

  {"id": "doc-1", "content": "the document text", "meta": {"lang": "en"}}

The index lands in the corpus directory together with a manifest and is
read-only from then on. Rebuild to change its contents.

Examples:
  lexstore build corpus.jsonl --dir ./corpus
  lexstore build corpus.jsonl --dir ./corpus --backend sqlite
  lexstore build corpus.jsonl --dir ./corpus --language german`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.corpusDir, "dir", "d", ".", "Corpus directory to build the index into")
	cmd.Flags().StringVarP(&opts.backend, "backend", "b", "", "Index backend: bleve, sqlite (default from config)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Stemmer language, 'none' disables stemming (default from config)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Documents per index batch (default from config)")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, corpusFile string, opts buildOptions) error {
	cfg, err := config.Load(opts.corpusDir)
	if err != nil {
		return err
	}
	if opts.backend == "" {
		opts.backend = cfg.Corpus.Backend
	}
	if opts.language == "" {
		opts.language = cfg.Corpus.Language
	}
	if opts.batchSize == 0 {
		opts.batchSize = cfg.Build.BatchSize
	}

	out := output.New(cmd.OutOrStdout())

	docs, err := store.ReadCorpusFile(corpusFile)
	if err != nil {
		return err
	}
	out.Statusf(">", "Read %d documents from %s", len(docs), corpusFile)

	slog.Info("build_started",
		slog.String("dir", opts.corpusDir),
		slog.String("backend", opts.backend),
		slog.Int("documents", len(docs)))

	manifest, err := store.Build(ctx, opts.corpusDir, store.StreamDocuments(docs), store.BuildOptions{
		Backend:   store.Backend(opts.backend),
		Language:  opts.language,
		BatchSize: opts.batchSize,
	})
	if err != nil {
		return err
	}

	out.Successf("Indexed %d documents into %s", manifest.DocCount, opts.corpusDir)
	out.Field("backend", manifest.Backend)
	out.Field("language", manifest.Language)
	return nil
}
