package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/bottleneck"
	"github.com/sells-group/patent-scout/internal/brief"
	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/metrics"
	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/oracle"
	"github.com/sells-group/patent-scout/internal/pipeline"
	"github.com/sells-group/patent-scout/internal/scorer"
	"github.com/sells-group/patent-scout/internal/store"
)

var (
	scanURLs        []string
	scanMetricsFile string
	scanBriefs      bool
	scanJSON        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan report sources and rank plasma processing opportunities",
	Long: "Fetches the configured report sources, extracts process bottlenecks, checks patent white space, " +
		"finds target companies, scores the opportunities and optionally writes and delivers briefs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scan"); err != nil {
			return err
		}
		if err := scorer.ValidateConfig(cfg.Scorer); err != nil {
			return err
		}

		ind, err := catalog.LoadIndustries(cfg.Catalog.IndustriesPath)
		if err != nil {
			return eris.Wrap(err, "load industry catalog")
		}
		sources := scanSources(ind.Sources, scanURLs)

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if n, err := st.DeleteExpiredPatents(ctx); err != nil {
				zap.L().Warn("patent cache cleanup failed", zap.Error(err))
			} else if n > 0 {
				zap.L().Debug("patent cache cleaned", zap.Int("expired", n))
			}
		}

		httpFetcher := newFetcher(cfg)
		limiters := newLimiters(cfg)

		// persist stays a nil interface when the store is disabled.
		var persist store.Store
		if st != nil {
			persist = st
		}
		analyzer, err := buildAnalyzer(cfg, httpFetcher, limiters, persist)
		if err != nil {
			return err
		}

		orc := buildOracle(cfg)
		caps := loadCapabilities(cfg)
		recorder := metrics.New()

		opts := []pipeline.Option{
			pipeline.WithObserver(recorder),
			pipeline.WithSources(
				fetcher.NewTextFetcher(httpFetcher, cfg.Fetch.MaxTextChars),
				bottleneck.New(*ind),
			),
		}
		if m := buildCapabilityMatcher(cfg, orc, caps); m != nil {
			opts = append(opts, pipeline.WithCapability(m))
		}
		meter, _ := orc.(oracle.Metered)
		if meter != nil {
			opts = append(opts, pipeline.WithMeter(meter))
		}

		assembler := pipeline.New(pipeline.Config{
			Workers:    cfg.Pipeline.Workers,
			RunTimeout: time.Duration(cfg.Pipeline.RunTimeoutSecs) * time.Second,
		}, analyzer, buildCompanyMatcher(cfg, *ind, httpFetcher, limiters), scorer.New(cfg.Scorer), opts...)

		run, err := startRun(ctx, persist, sources)
		if err != nil {
			return err
		}
		log := zap.L().With(zap.String("run_id", run.ID))

		res, err := assembler.Scan(ctx, sources)
		if err != nil {
			failRun(persist, run, model.RunStats{}, err)
			return eris.Wrap(err, "scan")
		}

		if persist != nil {
			if err := persist.SaveOpportunities(ctx, run.ID, res.Opportunities); err != nil {
				failRun(persist, run, res.Stats, err)
				return eris.Wrap(err, "save opportunities")
			}
		}

		if (cfg.Brief.Enabled || scanBriefs) && len(res.Opportunities) > 0 {
			gen := brief.NewGenerator(orc, caps)
			briefs := gen.GenerateAll(ctx, res.Opportunities)
			if failed := buildSinks(ctx, cfg).Deliver(ctx, run, briefs); failed > 0 {
				log.Warn("some brief sinks failed", zap.Int("failed", failed))
			}
		}
		if meter != nil {
			res.Stats.TokenUsage = meter.Usage()
		}

		if persist != nil {
			if err := persist.CompleteRun(ctx, run.ID, res.Stats); err != nil {
				return eris.Wrap(err, "complete run")
			}
		}

		recorder.ObserveRun(res.Stats, time.Now())
		if scanMetricsFile != "" {
			if err := recorder.WriteTextfile(scanMetricsFile); err != nil {
				log.Warn("write metrics textfile failed", zap.Error(err))
			}
		}

		log.Info("scan complete",
			zap.Int("opportunities", res.Stats.Opportunities),
			zap.Float64("cost_usd", res.Stats.TokenUsage.Cost),
		)

		if scanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		_, err = fmt.Fprint(os.Stdout, pipeline.FormatReport(res))
		return err
	},
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanURLs, "url", nil, "scan these report URLs instead of the catalog sources")
	scanCmd.Flags().StringVar(&scanMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	scanCmd.Flags().BoolVar(&scanBriefs, "briefs", false, "generate and deliver briefs regardless of brief.enabled")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(scanCmd)
}

// scanSources returns the catalog sources, or one source per URL when URLs
// are given.
func scanSources(catalogSources []catalog.TextSource, urls []string) []catalog.TextSource {
	if len(urls) == 0 {
		return catalogSources
	}
	out := make([]catalog.TextSource, 0, len(urls))
	for _, u := range urls {
		out = append(out, catalog.TextSource{Name: u, URL: u})
	}
	return out
}

func sourceNames(sources []catalog.TextSource) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}

// startRun records the run in the store, or makes an unsaved run when
// persistence is disabled.
func startRun(ctx context.Context, st store.Store, sources []catalog.TextSource) (*model.Run, error) {
	if st == nil {
		now := time.Now().UTC()
		return &model.Run{
			ID:        uuid.New().String(),
			Status:    model.RunStatusRunning,
			Sources:   sourceNames(sources),
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	run, err := st.CreateRun(ctx, sourceNames(sources))
	if err != nil {
		return nil, eris.Wrap(err, "create run")
	}
	return run, nil
}

// failRun marks the run failed. It uses a fresh context so a cancelled scan
// is still recorded.
func failRun(st store.Store, run *model.Run, stats model.RunStats, cause error) {
	if st == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.FailRun(ctx, run.ID, stats, cause.Error()); err != nil {
		zap.L().Error("mark run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}
