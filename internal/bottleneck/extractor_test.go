package bottleneck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

func newExtractor() *Extractor {
	return New(catalog.DefaultIndustries())
}

func TestExtract_KeywordAndIndustry(t *testing.T) {
	e := newExtractor()
	text := "Battery recycling is energy-intensive and low yield. The weather was nice! " +
		"Copper smelting has a high cost. Lithium extraction requires high temperature?"

	got := e.Extract(text, "DOE/IEA Report")
	require.Len(t, got, 2)

	assert.Equal(t, model.Bottleneck{
		Industry:    "battery",
		Process:     "recycling",
		Description: "Battery recycling is energy-intensive and low yield",
		Source:      "DOE/IEA Report",
	}, got[0])

	// Copper smelting matches a keyword but no industry tag.
	assert.Equal(t, "lithium", got[1].Industry)
	assert.Equal(t, "extraction", got[1].Process)
	assert.Equal(t, "Lithium extraction requires high temperature", got[1].Description)
}

func TestExtract_FirstIndustryTagWins(t *testing.T) {
	e := newExtractor()

	// Tag order is battery before lithium, regardless of position in text.
	got := e.Extract("Lithium supply for battery makers is a bottleneck.", "src")
	require.Len(t, got, 1)
	assert.Equal(t, "battery", got[0].Industry)
}

func TestExtract_DefaultProcess(t *testing.T) {
	e := newExtractor()

	got := e.Extract("Mining operations face safety concerns", "src")
	require.Len(t, got, 1)
	assert.Equal(t, "mining", got[0].Industry)
	assert.Equal(t, model.DefaultProcess, got[0].Process)
}

func TestExtract_CaseInsensitive(t *testing.T) {
	e := newExtractor()

	got := e.Extract("LITHIUM REFINING IS INEFFICIENT", "src")
	require.Len(t, got, 1)
	assert.Equal(t, "lithium", got[0].Industry)
	assert.Equal(t, "refining", got[0].Process)
}

func TestExtract_NothingToFind(t *testing.T) {
	e := newExtractor()

	assert.Empty(t, e.Extract("", "src"))
	assert.Empty(t, e.Extract("...!!!???", "src"))
	assert.Empty(t, e.Extract("Battery prices fell last year.", "src"))
}

func TestExtract_CustomCatalog(t *testing.T) {
	ind := catalog.Industries{
		BottleneckKeywords: []string{"scarce"},
		IndustryTags:       []string{"rare earth"},
	}
	e := New(ind)

	got := e.Extract("Rare Earth magnets are scarce. Battery tech is scarce.", "src")
	require.Len(t, got, 1)
	assert.Equal(t, "rare earth", got[0].Industry)
	assert.Equal(t, model.DefaultProcess, got[0].Process)
}

func TestExtractDocuments(t *testing.T) {
	e := newExtractor()
	docs := []fetcher.Document{
		{URL: "https://a.test", Label: "DOE/IEA Report", Text: "Lithium extraction requires high temperature.", Success: true},
		{URL: "https://down.test", Text: "Battery recycling is a bottleneck.", Success: false},
		{URL: "https://b.test", Text: "Lithium extraction requires high temperature.", Success: true},
	}

	got := e.ExtractDocuments(docs)
	require.Len(t, got, 2)
	assert.Equal(t, "DOE/IEA Report", got[0].Source)
	assert.Equal(t, "https://b.test", got[1].Source)

	// Both sources echo the same sentence; dedup collapses them.
	assert.Len(t, model.DedupeBottlenecks(got), 1)
}
