// Package bottleneck turns scanned report text into tagged Bottleneck records
// by lexical keyword matching.
package bottleneck

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

type term struct {
	raw    string
	folded string
}

// Extractor finds bottleneck sentences. It holds only folded copies of the
// catalog lists and is safe for concurrent use.
type Extractor struct {
	keywords   []term
	industries []term
	processes  []term
}

// New builds an Extractor from the industry catalog.
func New(ind catalog.Industries) *Extractor {
	return &Extractor{
		keywords:   foldAll(ind.BottleneckKeywords),
		industries: foldAll(ind.IndustryTags),
		processes:  foldAll(ind.ProcessTags),
	}
}

func foldAll(in []string) []term {
	out := make([]term, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, term{raw: s, folded: fold(s)})
	}
	return out
}

// fold returns a case-folded copy of s. A fresh Caser is used per call
// because Casers are stateful.
func fold(s string) string {
	return cases.Fold().String(s)
}

func firstMatch(folded string, terms []term) (string, bool) {
	for _, t := range terms {
		if strings.Contains(folded, t.folded) {
			return t.raw, true
		}
	}
	return "", false
}

func containsAny(folded string, terms []term) bool {
	_, ok := firstMatch(folded, terms)
	return ok
}

// Extract splits text on terminal punctuation and returns one Bottleneck per
// sentence that mentions a bottleneck keyword and an industry tag. The
// industry is the first tag in catalog order found in the sentence.
func (e *Extractor) Extract(text, source string) []model.Bottleneck {
	var out []model.Bottleneck
	for _, unit := range sentenceBoundary.Split(text, -1) {
		desc := strings.TrimSpace(unit)
		if desc == "" {
			continue
		}
		folded := fold(desc)
		if !containsAny(folded, e.keywords) {
			continue
		}
		industry, ok := firstMatch(folded, e.industries)
		if !ok {
			continue
		}
		process, ok := firstMatch(folded, e.processes)
		if !ok {
			process = model.DefaultProcess
		}
		out = append(out, model.Bottleneck{
			Industry:    industry,
			Process:     process,
			Description: desc,
			Source:      source,
		})
	}
	return out
}

// ExtractDocuments runs Extract over every successfully fetched document, in
// order. A document's label is used as the source when set, otherwise its URL.
func (e *Extractor) ExtractDocuments(docs []fetcher.Document) []model.Bottleneck {
	var out []model.Bottleneck
	for _, d := range docs {
		if !d.Success {
			continue
		}
		source := d.Label
		if source == "" {
			source = d.URL
		}
		found := e.Extract(d.Text, source)
		zap.L().Debug("bottleneck: extracted",
			zap.String("source", d.URL),
			zap.Int("count", len(found)),
		)
		out = append(out, found...)
	}
	return out
}
