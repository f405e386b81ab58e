package landscape

import (
	"context"
	"time"

	"github.com/sells-group/patent-scout/internal/model"
)

// Source names used for rate limiting, caching and configuration.
const (
	SourceGooglePatents = "google_patents"
	SourceUSPTO         = "uspto"
)

// PatentSource searches one patent registry. Implementations return an
// error on failure; the Analyzer downgrades it to an empty contribution.
type PatentSource interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]model.Patent, error)
}

// Cache stores search results per (source, query). The store package
// provides the SQLite implementation.
type Cache interface {
	GetCachedPatents(ctx context.Context, source, query string) ([]model.Patent, bool, error)
	SetCachedPatents(ctx context.Context, source, query string, patents []model.Patent, ttl time.Duration) error
}
