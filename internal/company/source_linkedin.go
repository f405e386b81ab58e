package company

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

// SourceLinkedIn is the limiter and log name of the LinkedIn source.
const SourceLinkedIn = "linkedin"

// DefaultLinkedInURL is the public company search page.
const DefaultLinkedInURL = "https://www.linkedin.com/search/results/companies/"

// LinkedInSource reads company names from LinkedIn's public search page.
// LinkedIn usually demands a login for this page, in which case the
// download fails and the source contributes nothing.
type LinkedInSource struct {
	fetcher    fetcher.Fetcher
	baseURL    string
	maxResults int
}

// NewLinkedInSource creates a source that downloads through f.
func NewLinkedInSource(f fetcher.Fetcher, baseURL string, maxResults int) *LinkedInSource {
	if baseURL == "" {
		baseURL = DefaultLinkedInURL
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &LinkedInSource{fetcher: f, baseURL: baseURL, maxResults: maxResults}
}

// Name implements Source.
func (l *LinkedInSource) Name() string { return SourceLinkedIn }

// Search implements Source.
func (l *LinkedInSource) Search(ctx context.Context, keyword string) ([]model.Company, error) {
	body, err := l.fetcher.Download(ctx, l.baseURL+"?keywords="+url.QueryEscape(keyword))
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: search")
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: parse results")
	}

	var companies []model.Company
	doc.Find("span.entity-result__title-text").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(companies) >= l.maxResults {
			return false
		}
		name := strings.Join(strings.Fields(s.Text()), " ")
		if name != "" {
			companies = append(companies, model.Company{Name: name, Source: model.CompanySourceLinkedIn})
		}
		return true
	})
	return companies, nil
}
