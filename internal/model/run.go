package model

import "time"

// RunStatus represents the current state of a scan run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run represents a single scan over a set of text sources.
type Run struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Sources   []string  `json:"sources"`
	Stats     RunStats  `json:"stats"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunStats counts bottleneck outcomes for one run.
type RunStats struct {
	Extracted         int        `json:"extracted"`
	Unique            int        `json:"unique"`
	DroppedPatented   int        `json:"dropped_patented"`
	DroppedNoCompany  int        `json:"dropped_no_company"`
	DroppedCapability int        `json:"dropped_capability"`
	Skipped           int        `json:"skipped"`
	Opportunities     int        `json:"opportunities"`
	DurationMs        int64      `json:"duration_ms"`
	TokenUsage        TokenUsage `json:"token_usage"`
}

// TokenUsage tracks oracle token consumption.
type TokenUsage struct {
	InputTokens         int     `json:"input_tokens"`
	OutputTokens        int     `json:"output_tokens"`
	CacheCreationTokens int     `json:"cache_creation_tokens"`
	CacheReadTokens     int     `json:"cache_read_tokens"`
	Cost                float64 `json:"cost"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.CacheCreationTokens += other.CacheCreationTokens
	t.CacheReadTokens += other.CacheReadTokens
	t.Cost += other.Cost
}
