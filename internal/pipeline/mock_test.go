package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/patent-scout/internal/capability"
	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

type mockLandscape struct {
	mock.Mock
}

func (m *mockLandscape) Analyze(ctx context.Context, b model.Bottleneck) model.PatentLandscape {
	args := m.Called(ctx, b)
	return args.Get(0).(model.PatentLandscape)
}

type mockCompanies struct {
	mock.Mock
}

func (m *mockCompanies) FindCompanies(ctx context.Context, b model.Bottleneck) []model.Company {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Company)
}

type mockCapability struct {
	mock.Mock
}

func (m *mockCapability) Match(ctx context.Context, b model.Bottleneck) capability.Result {
	args := m.Called(ctx, b)
	return args.Get(0).(capability.Result)
}

func (m *mockCapability) Accepts(r capability.Result) bool {
	return r.Verdict == capability.VerdictOK && capability.Accepted(r.Match, capability.DefaultThreshold)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url, label string) fetcher.Document {
	args := m.Called(ctx, url, label)
	return args.Get(0).(fetcher.Document)
}

type mockMeter struct {
	usage model.TokenUsage
}

func (m mockMeter) Usage() model.TokenUsage { return m.usage }

// recordingObserver collects observer calls.
type recordingObserver struct {
	mu       sync.Mutex
	stages   map[string]int
	outcomes map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{stages: map[string]int{}, outcomes: map[string]int{}}
}

func (r *recordingObserver) ObserveStage(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage]++
}

func (r *recordingObserver) ObserveOutcome(stage, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[stage+"/"+reason]++
}
