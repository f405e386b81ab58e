package landscape

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

// DefaultUSPTOBaseURL is the USPTO developer data-set API root.
const DefaultUSPTOBaseURL = "https://developer.uspto.gov/ds-api"

// USPTOSource queries the USPTO application search API.
type USPTOSource struct {
	fetcher fetcher.Fetcher
	baseURL string
}

// NewUSPTOSource creates a source that downloads through f. The fetcher
// already retries transient failures.
func NewUSPTOSource(f fetcher.Fetcher, baseURL string) *USPTOSource {
	if baseURL == "" {
		baseURL = DefaultUSPTOBaseURL
	}
	return &USPTOSource{fetcher: f, baseURL: baseURL}
}

// Name implements PatentSource.
func (s *USPTOSource) Name() string { return SourceUSPTO }

// Search implements PatentSource.
func (s *USPTOSource) Search(ctx context.Context, query string, maxResults int) ([]model.Patent, error) {
	params := url.Values{}
	params.Set("searchText", query)
	params.Set("rows", strconv.Itoa(maxResults))
	params.Set("start", "0")

	body, err := s.fetcher.Download(ctx, s.baseURL+"/patent/application/search?"+params.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "uspto: search")
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "uspto: read response")
	}
	return parseUSPTO(data, maxResults)
}

func parseUSPTO(data []byte, maxResults int) ([]model.Patent, error) {
	if !gjson.ValidBytes(data) {
		return nil, eris.New("uspto: invalid json response")
	}

	var patents []model.Patent
	gjson.GetBytes(data, "response.docs").ForEach(func(_, doc gjson.Result) bool {
		if maxResults > 0 && len(patents) >= maxResults {
			return false
		}
		patents = append(patents, model.Patent{
			Title:    doc.Get("patent_title").String(),
			Abstract: doc.Get("patent_abstract").String(),
			Number:   doc.Get("patent_number").String(),
			Source:   model.PatentSourceUSPTO,
		})
		return true
	})
	return patents, nil
}
