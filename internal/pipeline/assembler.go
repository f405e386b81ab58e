// Package pipeline assembles bottlenecks into ranked opportunities by
// composing the landscape, company, capability and scoring stages.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/patent-scout/internal/capability"
	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/oracle"
	"github.com/sells-group/patent-scout/internal/scorer"
)

// LandscapeAnalyzer reports patent coverage for a bottleneck.
type LandscapeAnalyzer interface {
	Analyze(ctx context.Context, b model.Bottleneck) model.PatentLandscape
}

// CompanyFinder finds companies in a bottleneck's industry.
type CompanyFinder interface {
	FindCompanies(ctx context.Context, b model.Bottleneck) []model.Company
}

// CapabilityMatcher judges whether a bottleneck fits the capability catalog.
type CapabilityMatcher interface {
	Match(ctx context.Context, b model.Bottleneck) capability.Result
	Accepts(r capability.Result) bool
}

// Scorer computes opportunity priority.
type Scorer interface {
	Score(in scorer.Input) float64
}

// Observer receives per-bottleneck timings and outcomes.
type Observer interface {
	ObserveStage(stage string, d time.Duration)
	ObserveOutcome(stage, reason string)
}

// Config tunes the Assembler.
type Config struct {
	// Workers bounds how many bottlenecks are processed at once. One
	// processes them strictly in discovery order.
	Workers int
	// RunTimeout stops scheduling new bottlenecks once elapsed. Zero means
	// no limit.
	RunTimeout time.Duration
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithCapability enables the capability stage.
func WithCapability(m CapabilityMatcher) Option {
	return func(a *Assembler) { a.capability = m }
}

// WithObserver reports stage timings and outcomes to o.
func WithObserver(o Observer) Option {
	return func(a *Assembler) { a.observer = o }
}

// WithMeter copies the oracle's token usage into run stats.
func WithMeter(m oracle.Metered) Option {
	return func(a *Assembler) { a.meter = m }
}

// WithSources enables Scan by supplying a document fetcher and extractor.
func WithSources(f DocumentFetcher, e Extractor) Option {
	return func(a *Assembler) {
		a.fetcher = f
		a.extractor = e
	}
}

// Assembler runs bottlenecks through every stage. Components are read-only
// after construction, so one Assembler may serve concurrent runs.
type Assembler struct {
	cfg        Config
	landscape  LandscapeAnalyzer
	companies  CompanyFinder
	scorer     Scorer
	capability CapabilityMatcher
	observer   Observer
	meter      oracle.Metered
	fetcher    DocumentFetcher
	extractor  Extractor
}

// New creates an Assembler.
func New(cfg Config, landscape LandscapeAnalyzer, companies CompanyFinder, sc Scorer, opts ...Option) *Assembler {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	a := &Assembler{
		cfg:       cfg,
		landscape: landscape,
		companies: companies,
		scorer:    sc,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run deduplicates bottlenecks, processes each through the stages and
// returns the surviving opportunities sorted by priority. Per-bottleneck
// failures are recorded in the outcomes, never returned. The only error is
// a parent context that is already done.
func (a *Assembler) Run(ctx context.Context, bottlenecks []model.Bottleneck) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run")
	}
	start := time.Now()

	unique := model.DedupeBottlenecks(bottlenecks)
	log := zap.L().With(zap.Int("bottlenecks", len(unique)), zap.Int("workers", a.cfg.Workers))
	log.Info("pipeline: starting run", zap.Int("extracted", len(bottlenecks)))

	runCtx := ctx
	if a.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, a.cfg.RunTimeout)
		defer cancel()
	}

	// Unscheduled bottlenecks keep the skipped outcome.
	outcomes := make([]Outcome, len(unique))
	for i, b := range unique {
		outcomes[i] = Outcome{Bottleneck: b, Stage: StagePending, DropReason: DropSkipped}
	}

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Workers)
	for i, b := range unique {
		if runCtx.Err() != nil {
			log.Warn("pipeline: run timeout, skipping remaining bottlenecks", zap.Int("remaining", len(unique)-i))
			break
		}
		g.Go(func() error {
			outcomes[i] = a.process(runCtx, b)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Opportunity != nil {
			res.Opportunities = append(res.Opportunities, *o.Opportunity)
		}
		if a.observer != nil {
			a.observer.ObserveOutcome(string(o.Stage), string(o.DropReason))
		}
	}
	sort.SliceStable(res.Opportunities, func(i, j int) bool {
		return res.Opportunities[i].Priority > res.Opportunities[j].Priority
	})

	res.Stats.Extracted = len(bottlenecks)
	res.Stats.Unique = len(unique)
	res.countOutcomes()
	res.Stats.DurationMs = time.Since(start).Milliseconds()
	if a.meter != nil {
		res.Stats.TokenUsage = a.meter.Usage()
	}

	log.Info("pipeline: run complete",
		zap.Int("opportunities", res.Stats.Opportunities),
		zap.Int("dropped_patented", res.Stats.DroppedPatented),
		zap.Int("dropped_no_company", res.Stats.DroppedNoCompany),
		zap.Int("dropped_capability", res.Stats.DroppedCapability),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Int64("duration_ms", res.Stats.DurationMs),
	)
	return res, nil
}

// process runs one bottleneck through the stages. A context that ends
// mid-way marks the bottleneck skipped rather than trusting partial stage
// results.
func (a *Assembler) process(ctx context.Context, b model.Bottleneck) Outcome {
	start := time.Now()
	out := Outcome{Bottleneck: b, Stage: StagePending}
	log := zap.L().With(zap.String("industry", b.Industry), zap.String("source", b.Source))

	done := func() Outcome {
		out.Duration = time.Since(start)
		if out.DropReason != DropNone {
			log.Debug("pipeline: bottleneck dropped",
				zap.String("stage", string(out.Stage)),
				zap.String("reason", string(out.DropReason)),
			)
		}
		return out
	}
	skipped := func() Outcome {
		out.DropReason = DropSkipped
		out.Err = ctx.Err().Error()
		return done()
	}

	landscape := timed(a, "landscape", func() model.PatentLandscape { return a.landscape.Analyze(ctx, b) })
	if ctx.Err() != nil {
		return skipped()
	}
	out.Stage = StageLandscapeChecked
	out.Landscape = &landscape
	if !landscape.WhiteSpace {
		out.DropReason = DropPatented
		return done()
	}

	companies := timed(a, "companies", func() []model.Company { return a.companies.FindCompanies(ctx, b) })
	if ctx.Err() != nil {
		return skipped()
	}
	out.Stage = StageMatchedCompanies
	out.Companies = companies
	if len(companies) == 0 {
		out.DropReason = DropNoCompany
		return done()
	}

	if a.capability != nil {
		r := timed(a, "capability", func() capability.Result { return a.capability.Match(ctx, b) })
		if ctx.Err() != nil {
			return skipped()
		}
		out.Stage = StageCapabilityMatched
		out.Match = r.Match
		if r.Err != nil {
			out.Err = r.Err.Error()
		}
		if !a.capability.Accepts(r) {
			out.DropReason = DropCapability
			return done()
		}
	}

	priority := a.scorer.Score(scorer.Input{
		WhiteSpace:   landscape.WhiteSpace,
		CompanyCount: len(companies),
		Description:  b.Description,
		Industry:     b.Industry,
	})
	out.Stage = StageScored
	out.Opportunity = &model.Opportunity{
		Bottleneck: b,
		Landscape:  landscape,
		Companies:  companies,
		Capability: out.Match,
		Priority:   priority,
	}
	log.Info("pipeline: opportunity scored", zap.Float64("priority", priority), zap.Int("companies", len(companies)))
	return done()
}

func timed[T any](a *Assembler, stage string, fn func() T) T {
	start := time.Now()
	v := fn()
	if a.observer != nil {
		a.observer.ObserveStage(stage, time.Since(start))
	}
	return v
}
