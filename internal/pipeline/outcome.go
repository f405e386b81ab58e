package pipeline

import (
	"time"

	"github.com/sells-group/patent-scout/internal/model"
)

// Stage is the furthest point a bottleneck reached in the assembler.
type Stage string

const (
	StagePending           Stage = "pending"
	StageLandscapeChecked  Stage = "landscape_checked"
	StageMatchedCompanies  Stage = "matched_companies"
	StageCapabilityMatched Stage = "capability_matched"
	StageScored            Stage = "scored"
)

// DropReason says why a bottleneck did not become an opportunity.
type DropReason string

const (
	DropNone       DropReason = ""
	DropPatented   DropReason = "patented"
	DropNoCompany  DropReason = "no_company"
	DropCapability DropReason = "capability"
	DropSkipped    DropReason = "skipped"
)

// Outcome is the composed result of every stage for one bottleneck. Each
// field is set by the stage that produced it and never modified after.
type Outcome struct {
	Bottleneck  model.Bottleneck       `json:"bottleneck"`
	Stage       Stage                  `json:"stage"`
	Landscape   *model.PatentLandscape `json:"landscape,omitempty"`
	Companies   []model.Company        `json:"companies,omitempty"`
	Match       *model.CapabilityMatch `json:"capability,omitempty"`
	Opportunity *model.Opportunity     `json:"opportunity,omitempty"`
	DropReason  DropReason             `json:"drop_reason,omitempty"`
	Err         string                 `json:"error,omitempty"`
	Duration    time.Duration          `json:"duration"`
}

// Result is the output of one assembler run. Opportunities are sorted by
// priority, highest first; Outcomes keep discovery order.
type Result struct {
	Opportunities []model.Opportunity `json:"opportunities"`
	Outcomes      []Outcome           `json:"outcomes"`
	Stats         model.RunStats      `json:"stats"`
}

func (r *Result) countOutcomes() {
	for _, o := range r.Outcomes {
		switch o.DropReason {
		case DropPatented:
			r.Stats.DroppedPatented++
		case DropNoCompany:
			r.Stats.DroppedNoCompany++
		case DropCapability:
			r.Stats.DroppedCapability++
		case DropSkipped:
			r.Stats.Skipped++
		}
	}
	r.Stats.Opportunities = len(r.Opportunities)
}
