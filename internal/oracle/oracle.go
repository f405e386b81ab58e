// Package oracle adapts a large language model to the pipeline's reasoning
// steps: capability matching and brief writing.
package oracle

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/resilience"
	"github.com/sells-group/patent-scout/pkg/anthropic"
)

// Request is one reasoning call. System is sent as a cached block so that
// repeated calls sharing it are billed once.
type Request struct {
	Phase     string
	System    string
	Prompt    string
	MaxTokens int64
}

// Oracle answers a prompt with free text. Any failure is reported as
// resilience.ErrOracleUnavailable.
type Oracle interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Metered is implemented by oracles that track token spend.
type Metered interface {
	Usage() model.TokenUsage
}

// Config tunes the Anthropic oracle.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	Timeout     time.Duration
	Circuit     resilience.CircuitBreakerConfig
	// Pricing overrides the built-in price table when non-zero.
	Pricing anthropic.Pricing
}

// Anthropic is an Oracle backed by the Anthropic messages API. It is safe
// for concurrent use.
type Anthropic struct {
	client  anthropic.Client
	cfg     Config
	breaker *resilience.CircuitBreaker

	mu    sync.Mutex
	usage model.TokenUsage
}

// NewAnthropic wraps client. A nil client yields an oracle that is always
// unavailable.
func NewAnthropic(client anthropic.Client, cfg Config) Oracle {
	if client == nil {
		return Disabled{}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Anthropic{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker(cfg.Circuit),
	}
}

// Complete implements Oracle.
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = a.cfg.MaxTokens
	}
	temp := a.cfg.Temperature
	msg := anthropic.MessageRequest{
		Model:       a.cfg.Model,
		MaxTokens:   maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(req.System, ""),
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
	}

	resp, err := resilience.ExecuteVal(ctx, a.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
		return a.client.CreateMessage(callCtx, msg)
	})
	if err != nil {
		zap.L().Warn("oracle: call failed",
			zap.String("phase", req.Phase),
			zap.String("circuit", a.breaker.State().String()),
			zap.Error(err),
		)
		return "", resilience.OracleUnavailable(err)
	}

	a.record(resp.Usage, req.Phase)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", resilience.OracleUnavailable(nil)
	}
	return text, nil
}

func (a *Anthropic) record(u anthropic.TokenUsage, phase string) {
	u.LogCost(a.cfg.Model, phase)

	cost := u.EstimateCost(a.cfg.Model)
	if a.cfg.Pricing != (anthropic.Pricing{}) {
		cost = u.Cost(a.cfg.Pricing)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage.Add(model.TokenUsage{
		InputTokens:         int(u.InputTokens),
		OutputTokens:        int(u.OutputTokens),
		CacheCreationTokens: int(u.CacheCreationInputTokens),
		CacheReadTokens:     int(u.CacheReadInputTokens),
		Cost:                cost,
	})
}

// Usage implements Metered.
func (a *Anthropic) Usage() model.TokenUsage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usage
}

// Disabled is the oracle used when no credentials are configured.
type Disabled struct{}

// Complete implements Oracle.
func (Disabled) Complete(context.Context, Request) (string, error) {
	return "", resilience.OracleUnavailable(nil)
}
