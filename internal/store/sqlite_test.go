package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/patent-scout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return s
}

func opp(industry string, priority float64) model.Opportunity {
	return model.Opportunity{
		Bottleneck: model.Bottleneck{Industry: industry, Process: "recycling", Description: industry + " is limited", Source: "DOE Report"},
		Landscape:  model.NewPatentLandscape(industry+" plasma processing", 4, nil),
		Companies:  []model.Company{{Name: "Acme", Source: model.CompanySourceWebSearch}},
		Priority:   priority,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, []string{"https://example.com/a"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	stats := model.RunStats{Extracted: 5, Unique: 4, DroppedPatented: 2, Opportunities: 2, DurationMs: 1200,
		TokenUsage: model.TokenUsage{InputTokens: 100, Cost: 0.01}}
	require.NoError(t, s.CompleteRun(ctx, run.ID, stats))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, []string{"https://example.com/a"}, got.Sources)
	assert.Equal(t, stats, got.Stats)
	assert.Empty(t, got.Error)
}

func TestFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, model.RunStats{Extracted: 1}, "industries catalog missing"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "industries catalog missing", got.Error)
	assert.Equal(t, []string{}, got.Sources)
}

func TestRunNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.CompleteRun(ctx, "missing", model.RunStats{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		r, err := s.CreateRun(ctx, nil)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	require.NoError(t, s.CompleteRun(ctx, ids[0], model.RunStats{}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")

	running, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusRunning})
	require.NoError(t, err)
	assert.Len(t, running, 2)

	recent, err := s.ListRuns(ctx, RunFilter{CreatedAfter: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ids[2], recent[0].ID)

	page, err := s.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestOpportunities_SaveAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)

	opps := []model.Opportunity{opp("battery", 0.8), opp("lithium", 0.6), opp("cement", 0.3)}
	require.NoError(t, s.SaveOpportunities(ctx, run.ID, opps))

	got, err := s.ListOpportunities(ctx, OpportunityFilter{RunID: run.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, so := range got {
		assert.Equal(t, i+1, so.Rank)
		assert.Equal(t, run.ID, so.RunID)
		assert.Equal(t, opps[i], so.Opportunity)
	}

	high, err := s.ListOpportunities(ctx, OpportunityFilter{MinPriority: 0.5})
	require.NoError(t, err)
	assert.Len(t, high, 2)

	lithium, err := s.ListOpportunities(ctx, OpportunityFilter{Industry: "lithium"})
	require.NoError(t, err)
	require.Len(t, lithium, 1)
	assert.Equal(t, 2, lithium[0].Rank)

	// Saving again replaces the run's set.
	require.NoError(t, s.SaveOpportunities(ctx, run.ID, opps[:1]))
	got, err = s.ListOpportunities(ctx, OpportunityFilter{RunID: run.ID})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOpportunities_UnknownRun(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveOpportunities(context.Background(), "missing", []model.Opportunity{opp("battery", 0.8)})
	assert.Error(t, err)
}

func TestPatentCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, ok, err := s.GetCachedPatents(ctx, "uspto", "battery plasma processing")
	require.NoError(t, err)
	assert.False(t, ok)

	patents := []model.Patent{{Title: "Plasma recycling", Number: "US1", Source: model.PatentSourceUSPTO}}
	require.NoError(t, s.SetCachedPatents(ctx, "uspto", "battery plasma processing", patents, time.Hour))

	got, ok, err := s.GetCachedPatents(ctx, "uspto", "battery plasma processing")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, patents, got)

	// Other sources do not share entries.
	_, ok, err = s.GetCachedPatents(ctx, "google_patents", "battery plasma processing")
	require.NoError(t, err)
	assert.False(t, ok)

	// Empty results are cached as a hit.
	require.NoError(t, s.SetCachedPatents(ctx, "google_patents", "battery plasma processing", nil, time.Hour))
	got, ok, err = s.GetCachedPatents(ctx, "google_patents", "battery plasma processing")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	// Overwrite extends the entry.
	require.NoError(t, s.SetCachedPatents(ctx, "uspto", "battery plasma processing", patents[:0], 3*time.Hour))

	now = now.Add(2 * time.Hour)
	_, ok, err = s.GetCachedPatents(ctx, "google_patents", "battery plasma processing")
	require.NoError(t, err)
	assert.False(t, ok, "expired")
	_, ok, err = s.GetCachedPatents(ctx, "uspto", "battery plasma processing")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.DeleteExpiredPatents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
