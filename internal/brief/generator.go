// Package brief turns scored opportunities into discussion briefs and
// delivers them to files, Notion, email and spreadsheets.
package brief

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/oracle"
	"github.com/sells-group/patent-scout/internal/scorer"
)

// promptCompanies is how many companies the brief prompt lists.
const promptCompanies = 5

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithMaxTokens overrides the completion budget for one brief.
func WithMaxTokens(n int64) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// Generator writes briefs with the reasoning oracle, falling back to a
// fixed template when the oracle cannot answer.
type Generator struct {
	oracle    oracle.Oracle
	caps      catalog.Capabilities
	md        goldmark.Markdown
	now       func() time.Time
	maxTokens int64
}

// NewGenerator creates a Generator. A nil oracle always yields template
// briefs; a nil catalog leaves the capability section generic.
func NewGenerator(o oracle.Oracle, caps *catalog.Capabilities, opts ...Option) *Generator {
	if o == nil {
		o = oracle.Disabled{}
	}
	g := &Generator{
		oracle:    o,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		now:       time.Now,
		maxTokens: 4096,
	}
	if caps != nil {
		g.caps = *caps
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the brief for one opportunity. It never fails: oracle
// errors fall back to the template and HTML errors leave HTML empty.
func (g *Generator) Generate(ctx context.Context, opp model.Opportunity) model.Brief {
	log := zap.L().With(zap.String("industry", opp.Bottleneck.Industry))

	text, err := g.oracle.Complete(ctx, oracle.Request{
		Phase:     "brief",
		System:    systemPrompt(g.caps),
		Prompt:    userPrompt(opp, g.caps),
		MaxTokens: g.maxTokens,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		log.Warn("brief: oracle unavailable, using template", zap.Error(err))
		text = Template(opp, g.caps)
	}

	b := model.Brief{
		Title:         opp.Title(),
		Industry:      opp.Bottleneck.Industry,
		Text:          strings.TrimSpace(text) + "\n",
		Priority:      opp.Priority,
		PriorityLabel: scorer.Label(opp.Priority),
		CompanyCount:  len(opp.Companies),
		Path:          FileName(opp.Bottleneck.Industry, g.now()),
	}
	html, err := g.RenderHTML(b.Text)
	if err != nil {
		log.Warn("brief: render html failed", zap.Error(err))
	}
	b.HTML = html
	return b
}

// GenerateAll produces briefs in opportunity order, stopping early if ctx
// ends.
func (g *Generator) GenerateAll(ctx context.Context, opps []model.Opportunity) []model.Brief {
	briefs := make([]model.Brief, 0, len(opps))
	for _, opp := range opps {
		if ctx.Err() != nil {
			break
		}
		briefs = append(briefs, g.Generate(ctx, opp))
	}
	return briefs
}

// RenderHTML converts markdown to an HTML fragment.
func (g *Generator) RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(markdown), &buf); err != nil {
		return "", eris.Wrap(err, "brief: render markdown")
	}
	return buf.String(), nil
}

// FileName is the brief's file name: the industry with path-unsafe
// characters replaced, then the date.
func FileName(industry string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(industry))
	if safe == "" {
		safe = "unknown"
	}
	return fmt.Sprintf("%s_%s.md", safe, at.Format("20060102"))
}
