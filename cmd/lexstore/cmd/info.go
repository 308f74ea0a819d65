package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexstore/lexstore/internal/docstore"
	"github.com/lexstore/lexstore/internal/output"
	"github.com/lexstore/lexstore/internal/store"
)

func newInfoCmd() *cobra.Command {
	var corpusDir string
	var format string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show corpus index details",
		Long: `Print backend, language, document count, and size of the index in a
corpus directory.

Examples:
  lexstore info --dir ./corpus
  lexstore info --dir ./corpus --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, corpusDir, format)
		},
	}

	cmd.Flags().StringVarP(&corpusDir, "dir", "d", ".", "Corpus directory holding the index")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runInfo(cmd *cobra.Command, corpusDir, format string) error {
	opts := docstore.DefaultOptions(corpusDir)
	opts.LoadCorpus = false
	ds, err := docstore.New(opts)
	if err != nil {
		return err
	}
	defer ds.Close()

	stats, err := ds.Stats()
	if err != nil {
		return err
	}

	type infoView struct {
		Path          string `json:"path"`
		Backend       string `json:"backend"`
		Language      string `json:"language,omitempty"`
		DocumentCount int    `json:"document_count"`
		SizeBytes     int64  `json:"size_bytes"`
		BuiltAt       string `json:"built_at,omitempty"`
	}

	view := infoView{
		Path:          corpusDir,
		Backend:       string(stats.Backend),
		Language:      stats.Language,
		DocumentCount: stats.DocumentCount,
		SizeBytes:     stats.SizeBytes,
	}
	if m := ds.Manifest(); m != nil && !m.BuiltAt.IsZero() {
		view.BuiltAt = m.BuiltAt.Format("2006-01-02 15:04:05 MST")
	}

	if format == "json" {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := output.New(cmd.OutOrStdout())
	out.Field("path", view.Path)
	out.Field("backend", view.Backend)
	if view.Language != "" {
		out.Field("language", view.Language)
	}
	out.Field("documents", view.DocumentCount)
	out.Field("size", formatSize(view.SizeBytes))
	if view.BuiltAt != "" {
		out.Field("built", view.BuiltAt)
	}
	if ds.Manifest() == nil {
		out.Newline()
		out.Dim(fmt.Sprintf("no %s present; language and build time unavailable", store.ManifestName))
	}
	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
