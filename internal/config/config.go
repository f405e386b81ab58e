package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Landscape  LandscapeConfig  `yaml:"landscape" mapstructure:"landscape"`
	Company    CompanyConfig    `yaml:"company" mapstructure:"company"`
	Capability CapabilityConfig `yaml:"capability" mapstructure:"capability"`
	Scorer     ScorerConfig     `yaml:"scorer" mapstructure:"scorer"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Brief      BriefConfig      `yaml:"brief" mapstructure:"brief"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Email      EmailConfig      `yaml:"email" mapstructure:"email"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the SQLite run store. An empty path disables
// persistence.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds the reasoning oracle settings.
type AnthropicConfig struct {
	Key                     string  `yaml:"key" mapstructure:"key"`
	Model                   string  `yaml:"model" mapstructure:"model"`
	MaxTokens               int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature             float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs             int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CircuitFailureThreshold int     `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold"`
	CircuitResetSecs        int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
	InputPerMTok            float64 `yaml:"input_per_mtok" mapstructure:"input_per_mtok"`
	OutputPerMTok           float64 `yaml:"output_per_mtok" mapstructure:"output_per_mtok"`
}

// CatalogConfig points at the reference data files.
type CatalogConfig struct {
	IndustriesPath   string `yaml:"industries_path" mapstructure:"industries_path"`
	CapabilitiesPath string `yaml:"capabilities_path" mapstructure:"capabilities_path"`
}

// FetchConfig configures HTTP access to text sources and scraped sites.
type FetchConfig struct {
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxTextChars     int    `yaml:"max_text_chars" mapstructure:"max_text_chars"`
	RetryAttempts    int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs   int    `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	SourceIntervalMs int    `yaml:"source_interval_ms" mapstructure:"source_interval_ms"`
}

// LandscapeConfig configures the patent landscape analyzer.
type LandscapeConfig struct {
	Technology       string   `yaml:"technology" mapstructure:"technology"`
	Sources          []string `yaml:"sources" mapstructure:"sources"`
	MaxResults       int      `yaml:"max_results" mapstructure:"max_results"`
	PriorArtResults  int      `yaml:"prior_art_results" mapstructure:"prior_art_results"`
	FTOKeywords      []string `yaml:"fto_keywords" mapstructure:"fto_keywords"`
	CallTimeoutSecs  int      `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	CacheTTLHours    int      `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	GooglePatentsURL string   `yaml:"google_patents_url" mapstructure:"google_patents_url"`
	USPTOBaseURL     string   `yaml:"uspto_base_url" mapstructure:"uspto_base_url"`
}

// CompanyConfig configures company discovery.
type CompanyConfig struct {
	LinkedInEnabled    bool   `yaml:"linkedin_enabled" mapstructure:"linkedin_enabled"`
	LinkedInURL        string `yaml:"linkedin_url" mapstructure:"linkedin_url"`
	LinkedInMaxResults int    `yaml:"linkedin_max_results" mapstructure:"linkedin_max_results"`
	MaxCompanies       int    `yaml:"max_companies" mapstructure:"max_companies"`
}

// CapabilityConfig configures capability matching.
type CapabilityConfig struct {
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// ScorerConfig holds the priority weights and keyword sets.
type ScorerConfig struct {
	WhiteSpaceWeight    float64  `yaml:"white_space_weight" mapstructure:"white_space_weight"`
	PerCompanyWeight    float64  `yaml:"per_company_weight" mapstructure:"per_company_weight"`
	CompanyCap          float64  `yaml:"company_cap" mapstructure:"company_cap"`
	UrgencyWeight       float64  `yaml:"urgency_weight" mapstructure:"urgency_weight"`
	ImportantWeight     float64  `yaml:"important_weight" mapstructure:"important_weight"`
	UrgencyKeywords     []string `yaml:"urgency_keywords" mapstructure:"urgency_keywords"`
	ImportantIndustries []string `yaml:"important_industries" mapstructure:"important_industries"`
}

// PipelineConfig configures the opportunity assembler.
type PipelineConfig struct {
	Workers        int `yaml:"workers" mapstructure:"workers"`
	RunTimeoutSecs int `yaml:"run_timeout_secs" mapstructure:"run_timeout_secs"`
}

// BriefConfig configures brief generation and file output.
type BriefConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	XLSXPath  string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
}

// NotionConfig holds Notion API credentials and the brief database ID.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BriefDB string `yaml:"brief_db" mapstructure:"brief_db"`
}

// EmailConfig configures the monthly report email.
type EmailConfig struct {
	Region     string   `yaml:"region" mapstructure:"region"`
	From       string   `yaml:"from" mapstructure:"from"`
	Recipients []string `yaml:"recipients" mapstructure:"recipients"`
}

// MetricsConfig configures the metrics textfile and run-summary alerts.
type MetricsConfig struct {
	File                 string  `yaml:"file" mapstructure:"file"`
	LookbackHours        int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	CostThresholdUSD     float64 `yaml:"cost_threshold_usd" mapstructure:"cost_threshold_usd"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.path", "patent-scout.db")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.temperature", 0.2)
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("anthropic.circuit_failure_threshold", 5)
	v.SetDefault("anthropic.circuit_reset_secs", 30)
	v.SetDefault("anthropic.input_per_mtok", 3.0)
	v.SetDefault("anthropic.output_per_mtok", 15.0)
	v.SetDefault("catalog.industries_path", "industries.yaml")
	v.SetDefault("catalog.capabilities_path", "capabilities.yaml")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; patent-scout/1.0)")
	v.SetDefault("fetch.max_text_chars", 50000)
	v.SetDefault("fetch.retry_attempts", 3)
	v.SetDefault("fetch.retry_backoff_ms", 500)
	v.SetDefault("fetch.source_interval_ms", 2000)
	v.SetDefault("landscape.technology", "plasma")
	v.SetDefault("landscape.sources", []string{"google_patents", "uspto"})
	v.SetDefault("landscape.max_results", 20)
	v.SetDefault("landscape.prior_art_results", 30)
	v.SetDefault("landscape.fto_keywords", []string{"plasma", "discharge", "ionization"})
	v.SetDefault("landscape.call_timeout_secs", 30)
	v.SetDefault("landscape.cache_ttl_hours", 168)
	v.SetDefault("landscape.google_patents_url", "https://patents.google.com/")
	v.SetDefault("landscape.uspto_base_url", "https://developer.uspto.gov/ds-api")
	v.SetDefault("company.linkedin_enabled", true)
	v.SetDefault("company.linkedin_url", "https://www.linkedin.com/search/results/companies/")
	v.SetDefault("company.linkedin_max_results", 5)
	v.SetDefault("company.max_companies", 10)
	v.SetDefault("capability.enabled", true)
	v.SetDefault("capability.threshold", 5.0)
	v.SetDefault("scorer.white_space_weight", 0.30)
	v.SetDefault("scorer.per_company_weight", 0.10)
	v.SetDefault("scorer.company_cap", 0.30)
	v.SetDefault("scorer.urgency_weight", 0.20)
	v.SetDefault("scorer.important_weight", 0.20)
	v.SetDefault("scorer.urgency_keywords", []string{"critical", "bottleneck", "limiting", "challenge"})
	v.SetDefault("scorer.important_industries", []string{"battery", "lithium", "critical", "rare earth"})
	v.SetDefault("pipeline.workers", 1)
	v.SetDefault("pipeline.run_timeout_secs", 0)
	v.SetDefault("brief.enabled", false)
	v.SetDefault("brief.output_dir", "briefs")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("metrics.lookback_hours", 720)
	v.SetDefault("metrics.failure_rate_threshold", 0.5)
	v.SetDefault("metrics.cost_threshold_usd", 0)

	// Keys without a useful default still need registering so env vars
	// reach Unmarshal.
	for _, key := range []string{
		"anthropic.key", "notion.token", "notion.brief_db",
		"email.from", "brief.xlsx_path", "metrics.file",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("email.recipients", []string{})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields required by the given command mode.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "scan":
		if c.Pipeline.Workers < 1 || c.Pipeline.Workers > 32 {
			errs = append(errs, "pipeline.workers must be between 1 and 32")
		}
		if c.Pipeline.RunTimeoutSecs < 0 {
			errs = append(errs, "pipeline.run_timeout_secs must be >= 0")
		}
		if c.Capability.Threshold < 0 || c.Capability.Threshold > 10 {
			errs = append(errs, "capability.threshold must be between 0 and 10")
		}
		if c.Company.MaxCompanies < 1 {
			errs = append(errs, "company.max_companies must be > 0")
		}
		if c.Catalog.IndustriesPath == "" {
			errs = append(errs, "catalog.industries_path is required")
		}
		errs = append(errs, c.validateLandscape()...)
	case "fto", "prior-art":
		errs = append(errs, c.validateLandscape()...)
	case "extract", "runs":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateLandscape() []string {
	var errs []string
	if c.Landscape.MaxResults < 1 {
		errs = append(errs, "landscape.max_results must be > 0")
	}
	if c.Landscape.Technology == "" {
		errs = append(errs, "landscape.technology is required")
	}
	if len(c.Landscape.Sources) == 0 {
		errs = append(errs, "landscape.sources must list at least one source")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
