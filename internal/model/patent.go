package model

// MaxSamplePatents caps the relevant-patent sample kept for display.
const MaxSamplePatents = 5

// PatentSource names the registry a patent record came from.
type PatentSource string

const (
	PatentSourceGoogle PatentSource = "GooglePatents"
	PatentSourceUSPTO  PatentSource = "USPTO"
)

// Patent is a single search hit from a patent source.
type Patent struct {
	Title    string       `json:"title"`
	Abstract string       `json:"abstract,omitempty"`
	Source   PatentSource `json:"source"`
	Number   string       `json:"number,omitempty"`
}

// PatentLandscape summarizes how crowded the solution space is for one
// bottleneck. Build it with NewPatentLandscape so WhiteSpace always agrees
// with RelevantPatents.
type PatentLandscape struct {
	Query           string   `json:"query"`
	TotalPatents    int      `json:"total_patents"`
	RelevantPatents int      `json:"relevant_patents"`
	WhiteSpace      bool     `json:"white_space"`
	SamplePatents   []Patent `json:"sample_patents"`
}

// NewPatentLandscape derives a landscape from the merged search total and the
// technology-relevant hits. A total smaller than the relevant count is raised
// to match it.
func NewPatentLandscape(query string, total int, relevant []Patent) PatentLandscape {
	if total < len(relevant) {
		total = len(relevant)
	}
	sample := relevant
	if len(sample) > MaxSamplePatents {
		sample = sample[:MaxSamplePatents]
	}
	return PatentLandscape{
		Query:           query,
		TotalPatents:    total,
		RelevantPatents: len(relevant),
		WhiteSpace:      len(relevant) == 0,
		SamplePatents:   append([]Patent(nil), sample...),
	}
}

// RiskLevel grades freedom-to-operate exposure.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskForBlocking maps a blocking-patent count to a risk level:
// HIGH above 5, MEDIUM for 1..5, LOW for none.
func RiskForBlocking(n int) RiskLevel {
	switch {
	case n > 5:
		return RiskHigh
	case n > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// FTOAssessment is a freedom-to-operate check for a free-text technology.
type FTOAssessment struct {
	Technology      string    `json:"technology"`
	BlockingPatents []Patent  `json:"blocking_patents"`
	FTOClear        bool      `json:"fto_clear"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendation  string    `json:"recommendation"`
}

// PriorArtReport summarizes prior art found for a candidate invention.
type PriorArtReport struct {
	Invention      string   `json:"invention"`
	PriorArt       []Patent `json:"prior_art"`
	WhiteSpace     bool     `json:"white_space"`
	Recommendation string   `json:"recommendation"`
}
