package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/store"
)

// Snapshot summarizes scan runs within a lookback window.
type Snapshot struct {
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsRunning  int     `json:"runs_running"`
	FailRate     float64 `json:"fail_rate"`

	Bottlenecks      int     `json:"bottlenecks"`
	Opportunities    int     `json:"opportunities"`
	AvgOpportunities float64 `json:"avg_opportunities"`
	CostUSD          float64 `json:"cost_usd"`
	AvgTokens        int     `json:"avg_tokens"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// RunLister is the part of the store the collector reads.
type RunLister interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Collector gathers run summaries from the store.
type Collector struct {
	runs RunLister
	now  func() time.Time
}

// NewCollector creates a Collector over runs.
func NewCollector(runs RunLister) *Collector {
	return &Collector{runs: runs, now: func() time.Time { return time.Now().UTC() }}
}

// Collect summarizes runs created within the last lookbackHours.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	now := c.now()
	snap := &Snapshot{LookbackHours: lookbackHours, CollectedAt: now}

	runs, err := c.runs.ListRuns(ctx, store.RunFilter{
		CreatedAfter: now.Add(-time.Duration(lookbackHours) * time.Hour),
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "metrics: list runs")
	}

	snap.RunsTotal = len(runs)
	var tokens int
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
		snap.Bottlenecks += r.Stats.Unique
		snap.Opportunities += r.Stats.Opportunities
		snap.CostUSD += r.Stats.TokenUsage.Cost
		tokens += r.Stats.TokenUsage.InputTokens + r.Stats.TokenUsage.OutputTokens
	}

	if finished := snap.RunsComplete + snap.RunsFailed; finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	if snap.RunsTotal > 0 {
		snap.AvgOpportunities = float64(snap.Opportunities) / float64(snap.RunsTotal)
		snap.AvgTokens = tokens / snap.RunsTotal
	}
	return snap, nil
}

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertFailureRate AlertType = "failure_rate"
	AlertCostOverrun AlertType = "cost_overrun"
)

// Alert is a breached threshold.
type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
}

// Thresholds configures Evaluate. Zero disables a check.
type Thresholds struct {
	FailureRate float64
	CostUSD     float64
}

// Evaluate checks snap against t. The failure-rate check needs at least
// five finished runs.
func Evaluate(snap *Snapshot, t Thresholds) []Alert {
	var alerts []Alert

	finished := snap.RunsComplete + snap.RunsFailed
	if t.FailureRate > 0 && finished >= 5 && snap.FailRate > t.FailureRate {
		alerts = append(alerts, Alert{
			Type: AlertFailureRate,
			Message: fmt.Sprintf(
				"scan failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d finished in last %dh)",
				snap.FailRate*100, t.FailureRate*100, snap.RunsFailed, finished, snap.LookbackHours,
			),
		})
	}

	if t.CostUSD > 0 && snap.CostUSD > t.CostUSD {
		alerts = append(alerts, Alert{
			Type: AlertCostOverrun,
			Message: fmt.Sprintf(
				"oracle cost $%.2f exceeds threshold $%.2f in last %dh",
				snap.CostUSD, t.CostUSD, snap.LookbackHours,
			),
		})
	}
	return alerts
}
