// Package landscape measures patent coverage for bottlenecks and free-text
// technologies across pluggable patent sources.
package landscape

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/resilience"
)

// FTO and prior-art recommendation texts.
const (
	RecommendFTOClear       = "FTO appears clear - proceed with commercialization"
	RecommendFTOReview      = "Some patents found - conduct detailed patent review with IP counsel"
	RecommendFTOSeekCounsel = "Multiple blocking patents found - seek IP counsel before proceeding"

	RecommendPriorArtFound = "Prior art found - review carefully before filing"
	RecommendPriorArtClear = "No prior art found - favorable for patent filing"
)

// priorArtWhiteSpaceLimit is the hit count below which an invention is
// considered white space.
const priorArtWhiteSpaceLimit = 3

// Config tunes the Analyzer.
type Config struct {
	// Technology is the term that marks a patent as relevant.
	Technology string
	// MaxResults caps results per source for landscape and FTO searches.
	MaxResults int
	// PriorArtResults caps results per source for prior-art searches.
	PriorArtResults int
	// FTOKeywords mark a patent as potentially blocking.
	FTOKeywords []string
	// CallTimeout bounds each source call.
	CallTimeout time.Duration
	// CacheTTL is how long cached search results stay valid.
	CacheTTL time.Duration
}

// DefaultConfig returns the scanner's standard landscape settings.
func DefaultConfig() Config {
	return Config{
		Technology:      "plasma",
		MaxResults:      20,
		PriorArtResults: 30,
		FTOKeywords:     []string{"plasma", "discharge", "ionization"},
		CallTimeout:     30 * time.Second,
		CacheTTL:        7 * 24 * time.Hour,
	}
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLimiters shares per-source rate limiters with other components.
func WithLimiters(l *resilience.SourceLimiters) Option {
	return func(a *Analyzer) { a.limiters = l }
}

// WithCache enables the search-result cache.
func WithCache(c Cache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// Analyzer computes patent landscapes. It is safe for concurrent use.
type Analyzer struct {
	cfg      Config
	sources  []PatentSource
	limiters *resilience.SourceLimiters
	cache    Cache
}

// NewAnalyzer creates an Analyzer over sources, queried in the given order.
func NewAnalyzer(cfg Config, sources []PatentSource, opts ...Option) *Analyzer {
	def := DefaultConfig()
	if cfg.Technology == "" {
		cfg.Technology = def.Technology
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.PriorArtResults <= 0 {
		cfg.PriorArtResults = def.PriorArtResults
	}
	if len(cfg.FTOKeywords) == 0 {
		cfg.FTOKeywords = def.FTOKeywords
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	a := &Analyzer{
		cfg:      cfg,
		sources:  sources,
		limiters: resilience.NewSourceLimiters(0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Query returns the landscape query for a bottleneck.
func (a *Analyzer) Query(b model.Bottleneck) string {
	return b.Industry + " " + a.cfg.Technology + " processing"
}

// Analyze searches every source for the bottleneck's query and reports how
// many hits mention the technology term. Source failures contribute nothing.
func (a *Analyzer) Analyze(ctx context.Context, b model.Bottleneck) model.PatentLandscape {
	query := a.Query(b)
	patents := a.search(ctx, query, a.cfg.MaxResults)
	relevant := filterMentioning(patents, []string{a.cfg.Technology})

	zap.L().Debug("landscape: analyzed",
		zap.String("industry", b.Industry),
		zap.String("query", query),
		zap.Int("total", len(patents)),
		zap.Int("relevant", len(relevant)),
	)
	return model.NewPatentLandscape(query, len(patents), relevant)
}

// FreedomToOperate searches for a free-text technology and grades the
// patents that mention any FTO keyword as blocking.
func (a *Analyzer) FreedomToOperate(ctx context.Context, technology string) model.FTOAssessment {
	patents := a.search(ctx, technology, a.cfg.MaxResults)
	blocking := filterMentioning(patents, a.cfg.FTOKeywords)

	var rec string
	switch {
	case len(blocking) == 0:
		rec = RecommendFTOClear
	case len(blocking) < 3:
		rec = RecommendFTOReview
	default:
		rec = RecommendFTOSeekCounsel
	}

	return model.FTOAssessment{
		Technology:      technology,
		BlockingPatents: blocking,
		FTOClear:        len(blocking) == 0,
		RiskLevel:       model.RiskForBlocking(len(blocking)),
		Recommendation:  rec,
	}
}

// PriorArt searches for an invention description. Fewer than three hits
// counts as white space.
func (a *Analyzer) PriorArt(ctx context.Context, invention string) model.PriorArtReport {
	patents := a.search(ctx, invention, a.cfg.PriorArtResults)

	rec := RecommendPriorArtClear
	if len(patents) > 0 {
		rec = RecommendPriorArtFound
	}
	return model.PriorArtReport{
		Invention:      invention,
		PriorArt:       patents,
		WhiteSpace:     len(patents) < priorArtWhiteSpaceLimit,
		Recommendation: rec,
	}
}

// search merges results from every source in order.
func (a *Analyzer) search(ctx context.Context, query string, maxResults int) []model.Patent {
	var merged []model.Patent
	for _, src := range a.sources {
		if ctx.Err() != nil {
			break
		}
		merged = append(merged, a.searchSource(ctx, src, query, maxResults)...)
	}
	return merged
}

func (a *Analyzer) searchSource(ctx context.Context, src PatentSource, query string, maxResults int) []model.Patent {
	log := zap.L().With(zap.String("source", src.Name()), zap.String("query", query))

	if a.cache != nil {
		cached, ok, err := a.cache.GetCachedPatents(ctx, src.Name(), query)
		if err != nil {
			log.Warn("landscape: cache read failed", zap.Error(err))
		} else if ok {
			log.Debug("landscape: cache hit", zap.Int("patents", len(cached)))
			return truncate(cached, maxResults)
		}
	}

	if err := a.limiters.Wait(ctx, src.Name()); err != nil {
		log.Warn("landscape: source skipped", zap.Error(resilience.SourceUnavailable(src.Name(), err)))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	patents, err := src.Search(callCtx, query, maxResults)
	if err != nil {
		log.Warn("landscape: source unavailable", zap.Error(resilience.SourceUnavailable(src.Name(), err)))
		return nil
	}
	patents = truncate(patents, maxResults)

	if a.cache != nil && a.cfg.CacheTTL > 0 {
		if err := a.cache.SetCachedPatents(ctx, src.Name(), query, patents, a.cfg.CacheTTL); err != nil {
			log.Warn("landscape: cache write failed", zap.Error(err))
		}
	}
	return patents
}

func truncate(patents []model.Patent, n int) []model.Patent {
	if n > 0 && len(patents) > n {
		return patents[:n]
	}
	return patents
}

// filterMentioning keeps patents whose title or abstract contains any term,
// compared case-insensitively.
func filterMentioning(patents []model.Patent, terms []string) []model.Patent {
	folder := cases.Fold()
	folded := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			folded = append(folded, folder.String(t))
		}
	}

	var out []model.Patent
	for _, p := range patents {
		text := folder.String(p.Title + " " + p.Abstract)
		for _, t := range folded {
			if strings.Contains(text, t) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
