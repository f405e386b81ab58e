package landscape

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/resilience"
)

// fastLimiters admits every call immediately.
func fastLimiters(names ...string) *resilience.SourceLimiters {
	l := resilience.NewSourceLimiters(0)
	for _, n := range names {
		l.Set(n, rate.NewLimiter(rate.Inf, 1))
	}
	return l
}

func newAnalyzer(sources ...PatentSource) *Analyzer {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	return NewAnalyzer(DefaultConfig(), sources, WithLimiters(fastLimiters(names...)))
}

var batteryBottleneck = model.Bottleneck{
	Industry:    "battery",
	Process:     "recycling",
	Description: "battery recycling is energy-intensive and low yield",
}

func patents(source model.PatentSource, titles ...string) []model.Patent {
	out := make([]model.Patent, 0, len(titles))
	for _, t := range titles {
		out = append(out, model.Patent{Title: t, Source: source})
	}
	return out
}

func TestAnalyze_WhiteSpaceWhenNoRelevantPatents(t *testing.T) {
	google := &mockSource{name: SourceGooglePatents}
	google.On("Search", mock.Anything, "battery plasma processing", 20).
		Return(patents(model.PatentSourceGoogle, "Hydrometallurgical battery recycling", "Cathode relithiation"), nil)
	uspto := &mockSource{name: SourceUSPTO}
	uspto.On("Search", mock.Anything, "battery plasma processing", 20).
		Return(patents(model.PatentSourceUSPTO, "Battery pack shredder"), nil)

	got := newAnalyzer(google, uspto).Analyze(context.Background(), batteryBottleneck)

	assert.Equal(t, "battery plasma processing", got.Query)
	assert.Equal(t, 3, got.TotalPatents)
	assert.Equal(t, 0, got.RelevantPatents)
	assert.True(t, got.WhiteSpace)
	assert.Empty(t, got.SamplePatents)
	google.AssertExpectations(t)
	uspto.AssertExpectations(t)
}

func TestAnalyze_RelevantPatentsCloseWhiteSpace(t *testing.T) {
	src := &mockSource{name: SourceUSPTO}
	src.On("Search", mock.Anything, mock.Anything, mock.Anything).Return([]model.Patent{
		{Title: "Plasma-assisted cathode recovery", Source: model.PatentSourceUSPTO},
		{Title: "Shredder", Abstract: "A non-thermal PLASMA reactor for black mass", Source: model.PatentSourceUSPTO},
		{Title: "Leaching circuit", Source: model.PatentSourceUSPTO},
	}, nil)

	got := newAnalyzer(src).Analyze(context.Background(), batteryBottleneck)

	assert.Equal(t, 3, got.TotalPatents)
	assert.Equal(t, 2, got.RelevantPatents)
	assert.False(t, got.WhiteSpace)
	require.Len(t, got.SamplePatents, 2)
	assert.Equal(t, "Plasma-assisted cathode recovery", got.SamplePatents[0].Title)
}

func TestAnalyze_SourceFailureContributesNothing(t *testing.T) {
	down := &mockSource{name: SourceGooglePatents}
	down.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("captcha"))
	up := &mockSource{name: SourceUSPTO}
	up.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(patents(model.PatentSourceUSPTO, "Plasma torch for lithium"), nil)

	got := newAnalyzer(down, up).Analyze(context.Background(), batteryBottleneck)

	assert.Equal(t, 1, got.TotalPatents)
	assert.Equal(t, 1, got.RelevantPatents)
	assert.False(t, got.WhiteSpace)
}

func TestAnalyze_AllSourcesDown(t *testing.T) {
	down := &mockSource{name: SourceUSPTO}
	down.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("503"))

	got := newAnalyzer(down).Analyze(context.Background(), batteryBottleneck)
	assert.Equal(t, 0, got.TotalPatents)
	assert.True(t, got.WhiteSpace)
}

func TestAnalyze_SampleCappedAtFive(t *testing.T) {
	titles := make([]string, 0, 8)
	for i := range 8 {
		titles = append(titles, fmt.Sprintf("Plasma method %d", i))
	}
	src := &mockSource{name: SourceUSPTO}
	src.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(patents(model.PatentSourceUSPTO, titles...), nil)

	got := newAnalyzer(src).Analyze(context.Background(), batteryBottleneck)
	assert.Equal(t, 8, got.RelevantPatents)
	assert.Len(t, got.SamplePatents, model.MaxSamplePatents)
}

func TestAnalyze_TruncatesOversizedSourceResults(t *testing.T) {
	titles := make([]string, 0, 25)
	for i := range 25 {
		titles = append(titles, fmt.Sprintf("Patent %d", i))
	}
	src := &mockSource{name: SourceUSPTO}
	src.On("Search", mock.Anything, mock.Anything, 20).Return(patents(model.PatentSourceUSPTO, titles...), nil)

	got := newAnalyzer(src).Analyze(context.Background(), batteryBottleneck)
	assert.Equal(t, 20, got.TotalPatents)
}

func TestAnalyze_CallTimeout(t *testing.T) {
	slow := &mockSource{name: SourceUSPTO}
	slow.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	cfg := DefaultConfig()
	cfg.CallTimeout = 20 * time.Millisecond
	a := NewAnalyzer(cfg, []PatentSource{slow}, WithLimiters(fastLimiters(SourceUSPTO)))

	got := a.Analyze(context.Background(), batteryBottleneck)
	assert.True(t, got.WhiteSpace)
}

func TestAnalyze_CacheHitSkipsSource(t *testing.T) {
	src := &mockSource{name: SourceUSPTO}
	cache := &mockCache{}
	cache.On("GetCachedPatents", mock.Anything, SourceUSPTO, "battery plasma processing").
		Return(patents(model.PatentSourceUSPTO, "Plasma recycling"), true, nil)

	a := NewAnalyzer(DefaultConfig(), []PatentSource{src}, WithLimiters(fastLimiters(SourceUSPTO)), WithCache(cache))
	got := a.Analyze(context.Background(), batteryBottleneck)

	assert.Equal(t, 1, got.RelevantPatents)
	src.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestAnalyze_CacheMissStoresResults(t *testing.T) {
	found := patents(model.PatentSourceUSPTO, "Leaching")
	src := &mockSource{name: SourceUSPTO}
	src.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(found, nil)
	cache := &mockCache{}
	cache.On("GetCachedPatents", mock.Anything, SourceUSPTO, mock.Anything).Return(nil, false, nil)
	cache.On("SetCachedPatents", mock.Anything, SourceUSPTO, "battery plasma processing", found, DefaultConfig().CacheTTL).Return(nil)

	a := NewAnalyzer(DefaultConfig(), []PatentSource{src}, WithLimiters(fastLimiters(SourceUSPTO)), WithCache(cache))
	got := a.Analyze(context.Background(), batteryBottleneck)

	assert.Equal(t, 1, got.TotalPatents)
	cache.AssertExpectations(t)
}

func TestAnalyze_FailedSearchNotCached(t *testing.T) {
	src := &mockSource{name: SourceUSPTO}
	src.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	cache := &mockCache{}
	cache.On("GetCachedPatents", mock.Anything, SourceUSPTO, mock.Anything).Return(nil, false, errors.New("db locked"))

	a := NewAnalyzer(DefaultConfig(), []PatentSource{src}, WithLimiters(fastLimiters(SourceUSPTO)), WithCache(cache))
	a.Analyze(context.Background(), batteryBottleneck)

	cache.AssertNotCalled(t, "SetCachedPatents", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFreedomToOperate(t *testing.T) {
	tests := []struct {
		name     string
		titles   []string
		risk     model.RiskLevel
		clear    bool
		blocking int
		rec      string
	}{
		{"clear", []string{"Hydrometallurgy", "Solvent extraction"}, model.RiskLow, true, 0, RecommendFTOClear},
		{"few", []string{"Plasma torch", "Arc discharge furnace", "Leaching"}, model.RiskMedium, false, 2, RecommendFTOReview},
		{"five", []string{"plasma a", "plasma b", "plasma c", "plasma d", "plasma e"}, model.RiskMedium, false, 5, RecommendFTOSeekCounsel},
		{"many", []string{"plasma a", "plasma b", "plasma c", "plasma d", "plasma e", "Ionization chamber"}, model.RiskHigh, false, 6, RecommendFTOSeekCounsel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{name: SourceUSPTO}
			src.On("Search", mock.Anything, "microwave plasma recycling", 20).
				Return(patents(model.PatentSourceUSPTO, tt.titles...), nil)

			got := newAnalyzer(src).FreedomToOperate(context.Background(), "microwave plasma recycling")
			assert.Equal(t, "microwave plasma recycling", got.Technology)
			assert.Len(t, got.BlockingPatents, tt.blocking)
			assert.Equal(t, tt.clear, got.FTOClear)
			assert.Equal(t, tt.risk, got.RiskLevel)
			assert.Equal(t, tt.rec, got.Recommendation)
		})
	}
}

func TestPriorArt(t *testing.T) {
	src := &mockSource{name: SourceUSPTO}
	src.On("Search", mock.Anything, "plasma lithium extraction", 30).
		Return(patents(model.PatentSourceUSPTO, "a", "b"), nil).Once()
	src.On("Search", mock.Anything, "plasma copper refining", 30).
		Return(patents(model.PatentSourceUSPTO, "a", "b", "c"), nil).Once()
	src.On("Search", mock.Anything, "plasma gallium", 30).Return(nil, nil).Once()

	a := newAnalyzer(src)

	few := a.PriorArt(context.Background(), "plasma lithium extraction")
	assert.True(t, few.WhiteSpace)
	assert.Equal(t, RecommendPriorArtFound, few.Recommendation)

	crowded := a.PriorArt(context.Background(), "plasma copper refining")
	assert.False(t, crowded.WhiteSpace)

	none := a.PriorArt(context.Background(), "plasma gallium")
	assert.True(t, none.WhiteSpace)
	assert.Empty(t, none.PriorArt)
	assert.Equal(t, RecommendPriorArtClear, none.Recommendation)
}

func TestAnalyze_CancelledContextSkipsSources(t *testing.T) {
	src := &mockSource{name: SourceUSPTO}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := newAnalyzer(src).Analyze(ctx, batteryBottleneck)
	assert.True(t, got.WhiteSpace)
	src.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}
