package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/patent-scout/internal/brief"
	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/config"
	"github.com/sells-group/patent-scout/internal/landscape"
	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/oracle"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{Path: filepath.Join(t.TempDir(), "scout.db")},
		Landscape: config.LandscapeConfig{
			Technology: "plasma",
			Sources:    []string{landscape.SourceGooglePatents, landscape.SourceUSPTO},
			MaxResults: 20,
		},
		Company:    config.CompanyConfig{MaxCompanies: 10},
		Capability: config.CapabilityConfig{Enabled: true, Threshold: 5},
		Brief:      config.BriefConfig{OutputDir: t.TempDir()},
	}
}

func TestBuildPatentSources(t *testing.T) {
	c := testConfig(t)
	sources, err := buildPatentSources(c, newFetcher(c))
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, landscape.SourceGooglePatents, sources[0].Name())
	assert.Equal(t, landscape.SourceUSPTO, sources[1].Name())

	c.Landscape.Sources = []string{"espacenet"}
	_, err = buildPatentSources(c, newFetcher(c))
	assert.ErrorContains(t, err, "espacenet")
}

func TestBuildOracle_NoKeyDisabled(t *testing.T) {
	c := testConfig(t)
	assert.IsType(t, oracle.Disabled{}, buildOracle(c))

	c.Anthropic.Key = "sk-test"
	_, metered := buildOracle(c).(oracle.Metered)
	assert.True(t, metered)
}

func TestBuildCapabilityMatcher(t *testing.T) {
	c := testConfig(t)
	caps := &catalog.Capabilities{Capabilities: []catalog.Capability{{Name: "Cold plasma"}}}

	assert.Nil(t, buildCapabilityMatcher(c, oracle.Disabled{}, nil))
	assert.NotNil(t, buildCapabilityMatcher(c, oracle.Disabled{}, caps))

	c.Capability.Enabled = false
	assert.Nil(t, buildCapabilityMatcher(c, oracle.Disabled{}, caps))
}

func TestLoadCapabilities_MissingDisables(t *testing.T) {
	c := testConfig(t)
	c.Catalog.CapabilitiesPath = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Nil(t, loadCapabilities(c))
}

func TestBuildSinks(t *testing.T) {
	c := testConfig(t)
	sinks := buildSinks(context.Background(), c)
	require.Len(t, sinks, 2)
	assert.Equal(t, "file", sinks[0].Name())
	assert.Equal(t, "email", sinks[1].Name())
	assert.False(t, sinks[1].(brief.EmailSink).Configured())

	c.Brief.XLSXPath = filepath.Join(t.TempDir(), "summary.xlsx")
	c.Notion.Token = "secret"
	c.Notion.BriefDB = "db"
	sinks = buildSinks(context.Background(), c)
	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{"file", "xlsx", "notion", "email"}, names)
}

func TestInitStore(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)
	st, err := initStore(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, st)
	require.NoError(t, st.Close())

	c.Store.Path = ""
	st, err = initStore(ctx, c)
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = requireStore(ctx, c)
	assert.ErrorContains(t, err, "store.path is required")
}

func TestScanSources(t *testing.T) {
	catalogSources := []catalog.TextSource{{Name: "DOE", URL: "https://energy.gov"}}
	assert.Equal(t, catalogSources, scanSources(catalogSources, nil))

	got := scanSources(catalogSources, []string{"https://a.example", "https://b.example"})
	require.Len(t, got, 2)
	assert.Equal(t, "https://a.example", got[0].Name)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, sourceNames(got))
}

func TestStartRun(t *testing.T) {
	ctx := context.Background()
	sources := []catalog.TextSource{{Name: "DOE", URL: "https://energy.gov"}}

	run, err := startRun(ctx, nil, sources)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, []string{"DOE"}, run.Sources)

	st, err := initStore(ctx, testConfig(t))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	run, err = startRun(ctx, st, sources)
	require.NoError(t, err)
	failRun(st, run, model.RunStats{Extracted: 3}, assert.AnError)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, 3, got.Stats.Extracted)
}
