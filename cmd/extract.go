package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/bottleneck"
	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

var extractURLs []string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the bottlenecks found in report sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		ind, err := catalog.LoadIndustries(cfg.Catalog.IndustriesPath)
		if err != nil {
			return eris.Wrap(err, "load industry catalog")
		}

		tf := fetcher.NewTextFetcher(newFetcher(cfg), cfg.Fetch.MaxTextChars)
		docs := make([]fetcher.Document, 0)
		for _, src := range scanSources(ind.Sources, extractURLs) {
			if ctx.Err() != nil {
				break
			}
			label := src.Label
			if label == "" {
				label = src.Name
			}
			doc := tf.Fetch(ctx, src.URL, label)
			if !doc.Success {
				zap.L().Warn("source unavailable", zap.String("url", src.URL), zap.Error(doc.Err))
			}
			docs = append(docs, doc)
		}

		found := model.DedupeBottlenecks(bottleneck.New(*ind).ExtractDocuments(docs))
		zap.L().Info("extraction complete", zap.Int("documents", len(docs)), zap.Int("bottlenecks", len(found)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	},
}

func init() {
	extractCmd.Flags().StringSliceVar(&extractURLs, "url", nil, "extract from these report URLs instead of the catalog sources")
	rootCmd.AddCommand(extractCmd)
}
