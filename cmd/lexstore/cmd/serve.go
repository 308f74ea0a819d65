package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lexstore/lexstore/internal/config"
	"github.com/lexstore/lexstore/internal/docstore"
	"github.com/lexstore/lexstore/internal/mcpserver"
	"github.com/lexstore/lexstore/internal/retriever"
)

func newServeCmd() *cobra.Command {
	var corpusDir string
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve retrieval over MCP on stdio",
		Long: `Start an MCP server exposing 'retrieve' and 'corpus_info' tools over
stdio. The corpus directory is watched by default; a rebuilt index is
picked up without restarting the server.

Stdout carries JSON-RPC exclusively; diagnostics go to the log file.

Examples:
  lexstore serve --dir ./corpus
  lexstore serve --dir ./corpus --no-watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), corpusDir, noWatch)
		},
	}

	cmd.Flags().StringVarP(&corpusDir, "dir", "d", ".", "Corpus directory holding the index")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload when the corpus directory changes")

	return cmd
}

func runServe(ctx context.Context, corpusDir string, noWatch bool) error {
	cfg, err := config.Load(corpusDir)
	if err != nil {
		return err
	}

	ds, err := docstore.New(docstore.Options{
		Path:       corpusDir,
		LoadCorpus: cfg.Retrieval.LoadCorpus,
		MMap:       cfg.Retrieval.MMap,
		Language:   cfg.Corpus.Language,
	})
	if err != nil {
		return err
	}
	defer ds.Close()

	r, err := retriever.New(ds, retriever.Options{
		TopK:      cfg.Retrieval.TopK,
		CacheSize: cfg.Retrieval.CacheSize,
	})
	if err != nil {
		return err
	}

	srv, err := mcpserver.NewServer(r, ds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Server.WatchCorpus && !noWatch {
		watcher, err := docstore.NewReloadWatcher(ds, r.InvalidateCache)
		if err != nil {
			slog.Warn("corpus_watch_unavailable", "error", err)
		} else {
			g.Go(func() error {
				if err := watcher.Run(ctx); err != nil && err != context.Canceled {
					return err
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		return srv.Serve(ctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
