// Package company finds companies operating in a bottleneck's industry.
package company

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/resilience"
)

// Source searches one company feed by industry keyword. Implementations
// return an error on failure; the Matcher downgrades it to no companies.
type Source interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]model.Company, error)
}

// Config tunes the Matcher.
type Config struct {
	MaxCompanies int
	CallTimeout  time.Duration
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLimiters shares per-source rate limiters with other components.
func WithLimiters(l *resilience.SourceLimiters) Option {
	return func(m *Matcher) { m.limiters = l }
}

// Matcher queries company sources in order and merges their results.
type Matcher struct {
	cfg      Config
	sources  []Source
	limiters *resilience.SourceLimiters
}

// NewMatcher creates a Matcher over sources.
func NewMatcher(cfg Config, sources []Source, opts ...Option) *Matcher {
	if cfg.MaxCompanies <= 0 {
		cfg.MaxCompanies = model.MaxCompanies
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	m := &Matcher{cfg: cfg, sources: sources}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindCompanies returns up to MaxCompanies unique companies for the
// bottleneck's industry, in source order.
func (m *Matcher) FindCompanies(ctx context.Context, b model.Bottleneck) []model.Company {
	var all []model.Company
	for _, src := range m.sources {
		if ctx.Err() != nil {
			break
		}
		all = append(all, m.searchSource(ctx, src, b.Industry)...)
	}

	found := Dedupe(all)
	if len(found) > m.cfg.MaxCompanies {
		found = found[:m.cfg.MaxCompanies]
	}
	zap.L().Debug("company: matched",
		zap.String("industry", b.Industry),
		zap.Int("candidates", len(all)),
		zap.Int("companies", len(found)),
	)
	return found
}

func (m *Matcher) searchSource(ctx context.Context, src Source, keyword string) []model.Company {
	log := zap.L().With(zap.String("source", src.Name()), zap.String("industry", keyword))

	if err := m.limiters.Wait(ctx, src.Name()); err != nil {
		log.Warn("company: source skipped", zap.Error(resilience.SourceUnavailable(src.Name(), err)))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()

	companies, err := src.Search(callCtx, keyword)
	if err != nil {
		log.Warn("company: source unavailable", zap.Error(resilience.SourceUnavailable(src.Name(), err)))
		return nil
	}
	return companies
}

// Dedupe drops companies whose name was already seen, comparing names
// exactly. The first record for each name is kept, in order. Applying
// Dedupe to its own output returns the same sequence.
func Dedupe(in []model.Company) []model.Company {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]model.Company, 0, len(in))
	for _, c := range in {
		if c.Name == "" || !seen.Add(c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}
