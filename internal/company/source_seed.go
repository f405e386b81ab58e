package company

import (
	"context"
	"sort"
	"strings"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/model"
)

// SourceSeed is the limiter and log name of the seed list.
const SourceSeed = "seed"

// SeedSource looks up the curated known-company list. A catalog key
// matches when it appears in the lower-cased industry; keys are visited in
// sorted order.
type SeedSource struct {
	keys      []string
	companies map[string][]model.Company
}

// NewSeedSource copies the known-company map out of the catalog.
func NewSeedSource(ind catalog.Industries) *SeedSource {
	companies := make(map[string][]model.Company, len(ind.KnownCompanies))
	var keys []string
	for _, k := range ind.SeedKeys() {
		lk := strings.ToLower(k)
		if _, ok := companies[lk]; !ok {
			keys = append(keys, lk)
		}
		companies[lk] = append(companies[lk], ind.KnownCompanies[k]...)
	}
	sort.Strings(keys)
	return &SeedSource{keys: keys, companies: companies}
}

// Name implements Source.
func (s *SeedSource) Name() string { return SourceSeed }

// Search implements Source. It never fails.
func (s *SeedSource) Search(_ context.Context, keyword string) ([]model.Company, error) {
	industry := strings.ToLower(keyword)
	var out []model.Company
	for _, k := range s.keys {
		if strings.Contains(industry, k) {
			out = append(out, s.companies[k]...)
		}
	}
	return out, nil
}
