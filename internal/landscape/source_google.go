package landscape

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

// DefaultGooglePatentsURL is the public Google Patents search page.
const DefaultGooglePatentsURL = "https://patents.google.com/"

// GooglePatentsSource scrapes result titles from the public search page.
// Abstracts are not shown in the listing, so they are left empty.
type GooglePatentsSource struct {
	fetcher fetcher.Fetcher
	baseURL string
}

// NewGooglePatentsSource creates a source that downloads through f.
func NewGooglePatentsSource(f fetcher.Fetcher, baseURL string) *GooglePatentsSource {
	if baseURL == "" {
		baseURL = DefaultGooglePatentsURL
	}
	return &GooglePatentsSource{fetcher: f, baseURL: baseURL}
}

// Name implements PatentSource.
func (g *GooglePatentsSource) Name() string { return SourceGooglePatents }

// Search implements PatentSource.
func (g *GooglePatentsSource) Search(ctx context.Context, query string, maxResults int) ([]model.Patent, error) {
	u := g.baseURL + "?q=" + url.QueryEscape(query)
	body, err := g.fetcher.Download(ctx, u)
	if err != nil {
		return nil, eris.Wrap(err, "google patents: search")
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "google patents: parse results")
	}

	var patents []model.Patent
	doc.Find("search-result-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if maxResults > 0 && len(patents) >= maxResults {
			return false
		}
		title := strings.TrimSpace(item.Find("h3").First().Text())
		if title == "" {
			return true
		}
		p := model.Patent{Title: title, Source: model.PatentSourceGoogle}
		if num, ok := item.Attr("data-result"); ok {
			p.Number = strings.TrimPrefix(strings.TrimSuffix(num, "/en"), "patent/")
		}
		patents = append(patents, p)
		return true
	})
	return patents, nil
}
