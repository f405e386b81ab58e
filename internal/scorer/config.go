// Package scorer computes opportunity priority from white space, company
// interest, urgency language and industry importance.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/patent-scout/internal/config"
)

// DefaultScorerConfig returns the standard priority weights. A white-space
// opportunity with three companies, urgent language and an important
// industry scores 1.0.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		WhiteSpaceWeight: 0.30,
		PerCompanyWeight: 0.10,
		CompanyCap:       0.30,
		UrgencyWeight:    0.20,
		ImportantWeight:  0.20,

		UrgencyKeywords:     []string{"critical", "bottleneck", "limiting", "challenge"},
		ImportantIndustries: []string{"battery", "lithium", "critical", "rare earth"},
	}
}

// MaxScore returns the highest raw score the weights allow before clamping.
func MaxScore(c config.ScorerConfig) float64 {
	return c.WhiteSpaceWeight + c.CompanyCap + c.UrgencyWeight + c.ImportantWeight
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	weights := map[string]float64{
		"white_space_weight": c.WhiteSpaceWeight,
		"per_company_weight": c.PerCompanyWeight,
		"company_cap":        c.CompanyCap,
		"urgency_weight":     c.UrgencyWeight,
		"important_weight":   c.ImportantWeight,
	}
	for name, w := range weights {
		if w < 0 || w > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1", name))
		}
	}

	if MaxScore(c) <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	if c.PerCompanyWeight > 0 && c.CompanyCap == 0 {
		errs = append(errs, "company_cap must be > 0 when per_company_weight is set")
	}

	for _, kw := range c.UrgencyKeywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, "urgency_keywords must not contain blanks")
			break
		}
	}
	for _, ind := range c.ImportantIndustries {
		if strings.TrimSpace(ind) == "" {
			errs = append(errs, "important_industries must not contain blanks")
			break
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
