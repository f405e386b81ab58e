// Package capability asks the reasoning oracle whether a bottleneck can be
// addressed by the technology owner's capabilities.
package capability

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/oracle"
	"github.com/sells-group/patent-scout/internal/resilience"
)

// DefaultThreshold is the minimum technical and commercial score for a
// match to be accepted.
const DefaultThreshold = 5

// Verdict classifies the outcome of one oracle consultation.
type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictUnavailable
	VerdictMalformed
)

func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictUnavailable:
		return "unavailable"
	case VerdictMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Result is the outcome of matching one bottleneck. Match is set only when
// Verdict is VerdictOK.
type Result struct {
	Verdict Verdict
	Match   *model.CapabilityMatch
	Err     error
}

// Matcher consults the oracle once per bottleneck. It does not retry.
type Matcher struct {
	oracle    oracle.Oracle
	system    string
	threshold float64
	schema    *gojsonschema.Schema
}

// NewMatcher builds a Matcher over the capability catalog. An empty catalog
// is reported as resilience.ErrConfigurationMissing. A threshold of zero or
// less uses DefaultThreshold.
func NewMatcher(o oracle.Oracle, caps *catalog.Capabilities, threshold float64) (*Matcher, error) {
	if caps == nil || caps.Empty() {
		return nil, eris.Wrap(resilience.ConfigurationMissing("capability catalog"), "capability: new matcher")
	}
	if o == nil {
		o = oracle.Disabled{}
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(verdictSchema))
	if err != nil {
		return nil, eris.Wrap(err, "capability: compile verdict schema")
	}
	return &Matcher{
		oracle:    o,
		system:    systemPrompt(*caps),
		threshold: threshold,
		schema:    schema,
	}, nil
}

// Threshold returns the acceptance threshold in use.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Match asks the oracle about one bottleneck.
func (m *Matcher) Match(ctx context.Context, b model.Bottleneck) Result {
	log := zap.L().With(zap.String("industry", b.Industry), zap.String("stage", "capability"))

	text, err := m.oracle.Complete(ctx, oracle.Request{
		Phase:     "capability",
		System:    m.system,
		Prompt:    userPrompt(b),
		MaxTokens: 1024,
	})
	if err != nil {
		log.Warn("capability: oracle unavailable", zap.Error(err))
		return Result{Verdict: VerdictUnavailable, Err: err}
	}

	match, err := m.decode(text)
	if err != nil {
		log.Warn("capability: malformed verdict", zap.Error(err))
		return Result{Verdict: VerdictMalformed, Err: err}
	}
	match.Bottleneck = b
	return Result{Verdict: VerdictOK, Match: match}
}

func (m *Matcher) decode(text string) (*model.CapabilityMatch, error) {
	raw, ok := cleanJSON(text)
	if !ok {
		return nil, resilience.MalformedOracleResponse("no json object")
	}

	res, err := m.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, resilience.MalformedOracleResponse(err.Error())
	}
	if !res.Valid() {
		errs := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			errs[i] = desc.String()
		}
		return nil, resilience.MalformedOracleResponse(strings.Join(errs, "; "))
	}

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, resilience.MalformedOracleResponse(err.Error())
	}

	tf := clampScore(v.TechnicalFeasibility)
	cp := clampScore(v.CommercialPotential)
	risks := v.Risks
	if risks == nil {
		risks = []string{}
	}
	return &model.CapabilityMatch{
		Applicable:           v.Applicable,
		CapabilityName:       v.Capability,
		ExpectedImprovement:  v.ExpectedImprovement,
		TechnicalFeasibility: tf,
		CommercialPotential:  cp,
		Risks:                risks,
		Recommendation:       v.Recommendation,
		CombinedScore:        model.CombinedScore(tf, cp),
	}, nil
}

// Accepted reports whether m is applicable and both sub-scores reach
// threshold.
func Accepted(m *model.CapabilityMatch, threshold float64) bool {
	return m != nil &&
		m.Applicable &&
		m.TechnicalFeasibility >= threshold &&
		m.CommercialPotential >= threshold
}

// Accepts applies the matcher's own threshold.
func (m *Matcher) Accepts(r Result) bool {
	return r.Verdict == VerdictOK && Accepted(r.Match, m.threshold)
}

// Rank sorts matches by combined score, highest first. Ties keep their
// input order.
func Rank(matches []model.CapabilityMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CombinedScore > matches[j].CombinedScore
	})
}

// MatchAll matches each bottleneck in order and returns the accepted
// matches ranked by combined score.
func (m *Matcher) MatchAll(ctx context.Context, bs []model.Bottleneck) []model.CapabilityMatch {
	var accepted []model.CapabilityMatch
	for _, b := range bs {
		if ctx.Err() != nil {
			break
		}
		r := m.Match(ctx, b)
		if m.Accepts(r) {
			accepted = append(accepted, *r.Match)
		}
	}
	Rank(accepted)
	zap.L().Info("capability: matched",
		zap.Int("bottlenecks", len(bs)),
		zap.Int("accepted", len(accepted)),
	)
	return accepted
}
