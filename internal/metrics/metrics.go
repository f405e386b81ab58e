// Package metrics records scan activity on a private prometheus registry
// and summarizes past runs from the store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"

	"github.com/sells-group/patent-scout/internal/model"
)

const namespace = "patent_scout"

// Recorder holds the scan metrics. The zero value is not usable; call New.
type Recorder struct {
	reg *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	outcomes      *prometheus.CounterVec
	opportunities prometheus.Counter
	tokens        *prometheus.CounterVec
	costUSD       prometheus.Counter
	runDuration   prometheus.Gauge
	lastRun       prometheus.Gauge
}

// New creates a Recorder on its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage per bottleneck",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bottlenecks_total",
			Help:      "Bottlenecks by final stage and drop reason",
		}, []string{"stage", "reason"}),
		opportunities: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_total",
			Help:      "Opportunities emitted",
		}),
		tokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_tokens_total",
			Help:      "Oracle tokens consumed by kind",
		}, []string{"kind"}),
		costUSD: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_cost_usd_total",
			Help:      "Estimated oracle spend",
		}),
		runDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObserveStage records how long one bottleneck spent in a stage.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveOutcome counts one bottleneck by the stage it reached. An empty
// reason means it became an opportunity.
func (r *Recorder) ObserveOutcome(stage, reason string) {
	if reason == "" {
		reason = "none"
		r.opportunities.Inc()
	}
	r.outcomes.WithLabelValues(stage, reason).Inc()
}

// ObserveRun records run-level totals.
func (r *Recorder) ObserveRun(stats model.RunStats, finished time.Time) {
	u := stats.TokenUsage
	r.tokens.WithLabelValues("input").Add(float64(u.InputTokens))
	r.tokens.WithLabelValues("output").Add(float64(u.OutputTokens))
	r.tokens.WithLabelValues("cache_write").Add(float64(u.CacheCreationTokens))
	r.tokens.WithLabelValues("cache_read").Add(float64(u.CacheReadTokens))
	if u.Cost > 0 {
		r.costUSD.Add(u.Cost)
	}
	r.runDuration.Set(float64(stats.DurationMs) / 1000)
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return eris.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}
