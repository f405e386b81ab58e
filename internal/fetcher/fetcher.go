package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Document is the plain text of one report page. Success is false when the
// page could not be fetched or parsed; Err then carries the reason.
type Document struct {
	URL     string
	Label   string
	Text    string
	Success bool
	Err     error
}
