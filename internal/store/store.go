// Package store persists scan runs, their opportunities and cached patent
// searches.
package store

import (
	"context"
	"time"

	"github.com/sells-group/patent-scout/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// OpportunityFilter specifies criteria for listing stored opportunities.
type OpportunityFilter struct {
	RunID       string  `json:"run_id,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	MinPriority float64 `json:"min_priority,omitempty"`
	Limit       int     `json:"limit,omitempty"`
}

// StoredOpportunity is an opportunity with the run that produced it and its
// rank within that run (1 is highest priority).
type StoredOpportunity struct {
	RunID       string            `json:"run_id"`
	Rank        int               `json:"rank"`
	Opportunity model.Opportunity `json:"opportunity"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Store defines the persistence interface for scans.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, sources []string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, stats model.RunStats) error
	FailRun(ctx context.Context, runID string, stats model.RunStats, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Opportunities
	SaveOpportunities(ctx context.Context, runID string, opps []model.Opportunity) error
	ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]StoredOpportunity, error)

	// Patent search cache
	GetCachedPatents(ctx context.Context, source, query string) ([]model.Patent, bool, error)
	SetCachedPatents(ctx context.Context, source, query string, patents []model.Patent, ttl time.Duration) error
	DeleteExpiredPatents(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
