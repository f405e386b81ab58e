package model

// CapabilityMatch is the oracle's judgment of how well one capability
// addresses a bottleneck.
type CapabilityMatch struct {
	Bottleneck           Bottleneck `json:"bottleneck"`
	Applicable           bool       `json:"applicable"`
	CapabilityName       string     `json:"capability_name,omitempty"`
	ExpectedImprovement  string     `json:"expected_improvement,omitempty"`
	TechnicalFeasibility float64    `json:"technical_feasibility"`
	CommercialPotential  float64    `json:"commercial_potential"`
	Risks                []string   `json:"risks"`
	Recommendation       string     `json:"recommendation,omitempty"`
	CombinedScore        float64    `json:"combined_score"`
}

// CombinedScore folds the two 0-10 sub-scores into [0,1].
func CombinedScore(technical, commercial float64) float64 {
	return (technical + commercial) / 20
}

// Opportunity is a scored, investigable opportunity. It is terminal: once
// emitted by the assembler it is only read.
type Opportunity struct {
	Bottleneck Bottleneck       `json:"bottleneck"`
	Landscape  PatentLandscape  `json:"patent_landscape"`
	Companies  []Company        `json:"companies"`
	Capability *CapabilityMatch `json:"capability,omitempty"`
	Priority   float64          `json:"priority"`
}

// Title is the display title used for briefs and reports.
func (o Opportunity) Title() string {
	return o.Bottleneck.Industry + " Opportunity"
}

// Brief is a generated discussion brief handed to delivery sinks.
type Brief struct {
	Title         string  `json:"title"`
	Industry      string  `json:"industry"`
	Text          string  `json:"brief_text"`
	HTML          string  `json:"-"`
	Priority      float64 `json:"priority"`
	PriorityLabel string  `json:"priority_label"`
	CompanyCount  int     `json:"company_count"`
	Path          string  `json:"path,omitempty"`
}
