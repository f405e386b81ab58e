package fetcher

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultMaxTextChars caps the text kept per report page.
const DefaultMaxTextChars = 50000

// boilerplate is removed before text extraction.
const boilerplate = "script, style, nav, footer, noscript, header"

// TextFetcher turns report pages into plain text documents.
type TextFetcher struct {
	fetcher  Fetcher
	maxChars int
}

// NewTextFetcher wraps f. A non-positive maxChars uses DefaultMaxTextChars.
func NewTextFetcher(f Fetcher, maxChars int) *TextFetcher {
	if maxChars <= 0 {
		maxChars = DefaultMaxTextChars
	}
	return &TextFetcher{fetcher: f, maxChars: maxChars}
}

// Fetch downloads one page and returns its visible text. Failures are
// reported through Document.Success rather than an error so a bad source
// never stops a scan.
func (t *TextFetcher) Fetch(ctx context.Context, url, label string) Document {
	doc := Document{URL: url, Label: label}
	log := zap.L().With(zap.String("source", url))

	body, err := t.fetcher.Download(ctx, url)
	if err != nil {
		log.Warn("fetcher: report unavailable", zap.Error(err))
		doc.Err = err
		return doc
	}
	defer body.Close() //nolint:errcheck

	text, err := ExtractText(body)
	if err != nil {
		log.Warn("fetcher: parse report", zap.Error(err))
		doc.Err = err
		return doc
	}

	doc.Text = Truncate(text, t.maxChars)
	doc.Success = true
	log.Debug("fetcher: report fetched", zap.Int("chars", utf8.RuneCountInString(doc.Text)))
	return doc
}

// FetchAll fetches each URL in order. Every URL yields one Document.
func (t *TextFetcher) FetchAll(ctx context.Context, urls []string, label string) []Document {
	docs := make([]Document, 0, len(urls))
	for _, u := range urls {
		if ctx.Err() != nil {
			docs = append(docs, Document{URL: u, Label: label, Err: ctx.Err()})
			continue
		}
		docs = append(docs, t.Fetch(ctx, u, label))
	}
	return docs
}

// ExtractText parses HTML from r and returns the body text with
// boilerplate elements removed and whitespace collapsed.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse html")
	}
	doc.Find(boilerplate).Remove()

	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	return strings.Join(strings.Fields(sel.Text()), " "), nil
}

// Truncate returns s cut to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
