package scorer

import (
	"math"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/patent-scout/internal/config"
)

// Priority labels.
const (
	LabelHigh   = "HIGH"
	LabelMedium = "MEDIUM"
	LabelLow    = "LOW"
)

// Input is everything the priority formula reads.
type Input struct {
	WhiteSpace   bool
	CompanyCount int
	Description  string
	Industry     string
}

// Breakdown is a score with its per-component contributions.
type Breakdown struct {
	WhiteSpace     float64  `json:"white_space"`
	Companies      float64  `json:"companies"`
	Urgency        float64  `json:"urgency"`
	Industry       float64  `json:"industry"`
	Total          float64  `json:"total"`
	MatchedUrgency []string `json:"matched_urgency,omitempty"`
}

// Scorer applies one weight configuration. It holds no mutable state.
type Scorer struct {
	cfg       config.ScorerConfig
	urgency   []string
	important []string
}

// New creates a Scorer. Keyword lists are case-folded once here.
func New(cfg config.ScorerConfig) *Scorer {
	return &Scorer{
		cfg:       cfg,
		urgency:   foldAll(cfg.UrgencyKeywords),
		important: foldAll(cfg.ImportantIndustries),
	}
}

// Score returns the priority for in, always within [0, 1].
func (s *Scorer) Score(in Input) float64 {
	return s.Explain(in).Total
}

// Explain returns the priority with its components.
func (s *Scorer) Explain(in Input) Breakdown {
	var b Breakdown
	if in.WhiteSpace {
		b.WhiteSpace = s.cfg.WhiteSpaceWeight
	}
	if in.CompanyCount > 0 {
		b.Companies = math.Min(float64(in.CompanyCount)*s.cfg.PerCompanyWeight, s.cfg.CompanyCap)
	}

	desc := fold(in.Description)
	for _, kw := range s.urgency {
		if strings.Contains(desc, kw) {
			b.MatchedUrgency = append(b.MatchedUrgency, kw)
		}
	}
	if len(b.MatchedUrgency) > 0 {
		b.Urgency = s.cfg.UrgencyWeight
	}

	industry := fold(in.Industry)
	for _, ind := range s.important {
		if strings.Contains(industry, ind) {
			b.Industry = s.cfg.ImportantWeight
			break
		}
	}

	b.Total = clamp(b.WhiteSpace + b.Companies + b.Urgency + b.Industry)
	return b
}

// Label grades a priority: HIGH above 0.7, MEDIUM above 0.5, LOW otherwise.
func Label(score float64) string {
	switch {
	case score > 0.7:
		return LabelHigh
	case score > 0.5:
		return LabelMedium
	default:
		return LabelLow
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	// Sums like 0.3+0.3+0.2 pick up float noise; keep four decimals.
	return math.Round(v*1e4) / 1e4
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, fold(s))
		}
	}
	return out
}
