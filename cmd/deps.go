package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/brief"
	"github.com/sells-group/patent-scout/internal/capability"
	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/company"
	"github.com/sells-group/patent-scout/internal/config"
	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/landscape"
	"github.com/sells-group/patent-scout/internal/oracle"
	"github.com/sells-group/patent-scout/internal/resilience"
	"github.com/sells-group/patent-scout/internal/store"
	anthropicpkg "github.com/sells-group/patent-scout/pkg/anthropic"
	"github.com/sells-group/patent-scout/pkg/notion"
)

// initStore opens the SQLite store and applies migrations. An empty path
// disables persistence and returns a nil store.
func initStore(ctx context.Context, c *config.Config) (*store.SQLiteStore, error) {
	if c.Store.Path == "" {
		return nil, nil
	}
	st, err := store.NewSQLite(c.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// requireStore is initStore for commands that cannot run without history.
func requireStore(ctx context.Context, c *config.Config) (*store.SQLiteStore, error) {
	st, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("store.path is required")
	}
	return st, nil
}

func newFetcher(c *config.Config) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:      c.Fetch.UserAgent,
		Timeout:        time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:     c.Fetch.RetryAttempts,
		InitialBackoff: time.Duration(c.Fetch.RetryBackoffMs) * time.Millisecond,
	})
}

func newLimiters(c *config.Config) *resilience.SourceLimiters {
	return resilience.NewSourceLimiters(time.Duration(c.Fetch.SourceIntervalMs) * time.Millisecond)
}

// buildPatentSources returns the configured patent sources in order.
// Unknown names are an error.
func buildPatentSources(c *config.Config, f fetcher.Fetcher) ([]landscape.PatentSource, error) {
	sources := make([]landscape.PatentSource, 0, len(c.Landscape.Sources))
	for _, name := range c.Landscape.Sources {
		switch name {
		case landscape.SourceGooglePatents:
			sources = append(sources, landscape.NewGooglePatentsSource(f, c.Landscape.GooglePatentsURL))
		case landscape.SourceUSPTO:
			sources = append(sources, landscape.NewUSPTOSource(f, c.Landscape.USPTOBaseURL))
		default:
			return nil, eris.Errorf("unknown patent source %q", name)
		}
	}
	return sources, nil
}

func buildAnalyzer(c *config.Config, f fetcher.Fetcher, lim *resilience.SourceLimiters, cache landscape.Cache) (*landscape.Analyzer, error) {
	sources, err := buildPatentSources(c, f)
	if err != nil {
		return nil, err
	}
	opts := []landscape.Option{landscape.WithLimiters(lim)}
	if cache != nil {
		opts = append(opts, landscape.WithCache(cache))
	}
	return landscape.NewAnalyzer(landscape.Config{
		Technology:      c.Landscape.Technology,
		MaxResults:      c.Landscape.MaxResults,
		PriorArtResults: c.Landscape.PriorArtResults,
		FTOKeywords:     c.Landscape.FTOKeywords,
		CallTimeout:     time.Duration(c.Landscape.CallTimeoutSecs) * time.Second,
		CacheTTL:        time.Duration(c.Landscape.CacheTTLHours) * time.Hour,
	}, sources, opts...), nil
}

func buildCompanyMatcher(c *config.Config, ind catalog.Industries, f fetcher.Fetcher, lim *resilience.SourceLimiters) *company.Matcher {
	sources := []company.Source{company.NewSeedSource(ind)}
	if c.Company.LinkedInEnabled {
		sources = append(sources, company.NewLinkedInSource(f, c.Company.LinkedInURL, c.Company.LinkedInMaxResults))
	}
	return company.NewMatcher(company.Config{
		MaxCompanies: c.Company.MaxCompanies,
		CallTimeout:  time.Duration(c.Landscape.CallTimeoutSecs) * time.Second,
	}, sources, company.WithLimiters(lim))
}

// buildOracle returns the Anthropic-backed oracle, or a disabled one when
// no key is configured.
func buildOracle(c *config.Config) oracle.Oracle {
	if c.Anthropic.Key == "" {
		zap.L().Warn("anthropic key not set, oracle disabled")
		return oracle.Disabled{}
	}
	client := anthropicpkg.NewClient(c.Anthropic.Key)
	return oracle.NewAnthropic(client, oracle.Config{
		Model:       c.Anthropic.Model,
		MaxTokens:   c.Anthropic.MaxTokens,
		Temperature: c.Anthropic.Temperature,
		Timeout:     time.Duration(c.Anthropic.TimeoutSecs) * time.Second,
		Circuit:     resilience.FromCircuitConfig(c.Anthropic.CircuitFailureThreshold, c.Anthropic.CircuitResetSecs),
		Pricing: anthropicpkg.Pricing{
			InputPerMTok:  c.Anthropic.InputPerMTok,
			OutputPerMTok: c.Anthropic.OutputPerMTok,
		},
	})
}

// loadCapabilities reads the capability catalog. A missing catalog is not
// an error: it disables capability matching.
func loadCapabilities(c *config.Config) *catalog.Capabilities {
	caps, err := catalog.LoadCapabilities(c.Catalog.CapabilitiesPath)
	if err != nil {
		zap.L().Warn("capability catalog unavailable, capability matching disabled", zap.Error(err))
		return nil
	}
	return caps
}

// buildCapabilityMatcher returns nil when matching is disabled or cannot
// be configured.
func buildCapabilityMatcher(c *config.Config, o oracle.Oracle, caps *catalog.Capabilities) *capability.Matcher {
	if !c.Capability.Enabled || caps == nil {
		return nil
	}
	m, err := capability.NewMatcher(o, caps, c.Capability.Threshold)
	if err != nil {
		zap.L().Warn("capability matcher disabled", zap.Error(err))
		return nil
	}
	return m
}

// buildSinks assembles the delivery sinks the configuration enables.
func buildSinks(ctx context.Context, c *config.Config) brief.MultiSink {
	sinks := brief.MultiSink{brief.FileSink{Dir: c.Brief.OutputDir}}

	if c.Brief.XLSXPath != "" {
		sinks = append(sinks, brief.XLSXSink{Path: c.Brief.XLSXPath})
	}
	if c.Notion.Token != "" && c.Notion.BriefDB != "" {
		sinks = append(sinks, brief.NotionSink{
			Client:     notion.NewClient(c.Notion.Token),
			DatabaseID: c.Notion.BriefDB,
		})
	}

	email := brief.EmailSink{
		From:       c.Email.From,
		Recipients: c.Email.Recipients,
		BriefDir:   c.Brief.OutputDir,
	}
	if c.Email.Region != "" && c.Email.From != "" && len(c.Email.Recipients) > 0 {
		sender, err := brief.NewSESSender(ctx, c.Email.Region)
		if err != nil {
			zap.L().Warn("ses client unavailable", zap.Error(err))
		} else {
			email.Sender = sender
		}
	}
	// An unconfigured email sink logs the skip itself.
	sinks = append(sinks, email)
	return sinks
}
