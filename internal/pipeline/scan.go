package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/fetcher"
	"github.com/sells-group/patent-scout/internal/model"
)

// DocumentFetcher downloads one text source. Failures are reported in the
// returned Document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url, label string) fetcher.Document
}

// Extractor turns fetched documents into bottlenecks.
type Extractor interface {
	ExtractDocuments(docs []fetcher.Document) []model.Bottleneck
}

// Scan fetches every text source in order, extracts bottlenecks and runs
// them through the assembler. Unreachable sources contribute nothing.
func (a *Assembler) Scan(ctx context.Context, sources []catalog.TextSource) (*Result, error) {
	if a.fetcher == nil || a.extractor == nil {
		return nil, eris.New("pipeline: scan requires a fetcher and an extractor")
	}

	docs := make([]fetcher.Document, 0, len(sources))
	fetched := 0
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		label := src.Label
		if label == "" {
			label = src.Name
		}
		doc := a.fetcher.Fetch(ctx, src.URL, label)
		if doc.Success {
			fetched++
		}
		docs = append(docs, doc)
	}

	bottlenecks := a.extractor.ExtractDocuments(docs)
	zap.L().Info("pipeline: sources scanned",
		zap.Int("sources", len(sources)),
		zap.Int("fetched", fetched),
		zap.Int("bottlenecks", len(bottlenecks)),
	)
	return a.Run(ctx, bottlenecks)
}
