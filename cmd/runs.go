package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/patent-scout/internal/metrics"
	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/scorer"
	"github.com/sells-group/patent-scout/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scan run history",
	Long:  "Commands for listing, viewing, and summarizing scan runs and their opportunities.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scan runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := requireStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Status: model.RunStatus(status), Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its ranked opportunities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := requireStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		opps, err := st.ListOpportunities(ctx, store.OpportunityFilter{RunID: run.ID})
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		return printJSON(struct {
			Run           *model.Run                `json:"run"`
			Opportunities []store.StoredOpportunity `json:"opportunities"`
		}{run, opps})
	},
}

// -- runs opportunities --

var runsOppsCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "List stored opportunities across runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := requireStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runID, _ := cmd.Flags().GetString("run")
		industry, _ := cmd.Flags().GetString("industry")
		minPriority, _ := cmd.Flags().GetFloat64("min-priority")
		limit, _ := cmd.Flags().GetInt("limit")

		opps, err := st.ListOpportunities(ctx, store.OpportunityFilter{
			RunID:       runID,
			Industry:    industry,
			MinPriority: minPriority,
			Limit:       limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs opportunities")
		}
		if len(opps) == 0 {
			fmt.Fprintln(os.Stderr, "No opportunities found.")
			return nil
		}

		formatOpportunities(os.Stdout, opps)
		return nil
	},
}

// -- runs summary --

var runsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize recent runs and check alert thresholds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := requireStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		lookback, _ := cmd.Flags().GetInt("lookback-hours")
		if lookback <= 0 {
			lookback = cfg.Metrics.LookbackHours
		}

		snap, err := metrics.NewCollector(st).Collect(ctx, lookback)
		if err != nil {
			return eris.Wrap(err, "runs summary")
		}
		alerts := metrics.Evaluate(snap, metrics.Thresholds{
			FailureRate: cfg.Metrics.FailureRateThreshold,
			CostUSD:     cfg.Metrics.CostThresholdUSD,
		})

		formatSummary(os.Stdout, snap, alerts)
		if len(alerts) > 0 {
			return eris.Errorf("%d alert(s) raised", len(alerts))
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsOppsCmd.Flags().String("run", "", "filter by run ID")
	runsOppsCmd.Flags().String("industry", "", "filter by industry")
	runsOppsCmd.Flags().Float64("min-priority", 0, "minimum priority")
	runsOppsCmd.Flags().Int("limit", 50, "max number of opportunities to display")

	runsSummaryCmd.Flags().Int("lookback-hours", 0, "summary window in hours (default metrics.lookback_hours)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsOppsCmd)
	runsCmd.AddCommand(runsSummaryCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tSOURCES\tUNIQUE\tOPPS\tCOST\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t------\t-------\t------\t----\t----\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t$%.2f\t%s\t%s\n",
			truncateID(r.ID),
			r.Status,
			len(r.Sources),
			r.Stats.Unique,
			r.Stats.Opportunities,
			r.Stats.TokenUsage.Cost,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// formatOpportunities writes stored opportunities with their priority
// labels.
func formatOpportunities(out io.Writer, opps []store.StoredOpportunity) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN\tRANK\tINDUSTRY\tPRIORITY\tLABEL\tCOMPANIES\tPROBLEM")
	_, _ = fmt.Fprintln(w, "---\t----\t--------\t--------\t-----\t---------\t-------")

	for _, o := range opps {
		desc := o.Opportunity.Bottleneck.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t%s\t%d\t%s\n",
			truncateID(o.RunID),
			o.Rank,
			o.Opportunity.Bottleneck.Industry,
			o.Opportunity.Priority,
			scorer.Label(o.Opportunity.Priority),
			len(o.Opportunity.Companies),
			desc,
		)
	}
	_ = w.Flush()
}

// formatSummary writes a run summary and any raised alerts to w.
func formatSummary(out io.Writer, s *metrics.Snapshot, alerts []metrics.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Window:\t%dh\n", s.LookbackHours)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.RunsTotal)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.RunsComplete)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.RunsFailed)
	_, _ = fmt.Fprintf(w, "Running:\t%d\n", s.RunsRunning)
	_, _ = fmt.Fprintf(w, "Failure rate:\t%.1f%%\n", s.FailRate*100)
	_, _ = fmt.Fprintf(w, "Bottlenecks:\t%d\n", s.Bottlenecks)
	_, _ = fmt.Fprintf(w, "Opportunities:\t%d\n", s.Opportunities)
	_, _ = fmt.Fprintf(w, "Avg opportunities:\t%.1f\n", s.AvgOpportunities)
	_, _ = fmt.Fprintf(w, "Oracle cost:\t$%.2f\n", s.CostUSD)
	_ = w.Flush()

	for _, a := range alerts {
		_, _ = fmt.Fprintf(out, "ALERT [%s] %s\n", a.Type, a.Message)
	}
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
