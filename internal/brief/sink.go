package brief

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/patent-scout/internal/model"
)

// Sink delivers a run's briefs somewhere.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, run *model.Run, briefs []model.Brief) error
}

// MultiSink delivers to each sink in order. A failing sink is logged and
// does not stop the others.
type MultiSink []Sink

// Deliver calls every sink and returns how many failed.
func (m MultiSink) Deliver(ctx context.Context, run *model.Run, briefs []model.Brief) int {
	failed := 0
	for _, s := range m {
		if err := s.Deliver(ctx, run, briefs); err != nil {
			failed++
			zap.L().Error("brief: sink failed", zap.String("sink", s.Name()), zap.Error(err))
			continue
		}
		zap.L().Info("brief: delivered", zap.String("sink", s.Name()), zap.Int("briefs", len(briefs)))
	}
	return failed
}

// ByPriority returns a copy of briefs sorted by priority, highest first.
// Ties keep their input order.
func ByPriority(briefs []model.Brief) []model.Brief {
	out := append([]model.Brief(nil), briefs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// FileSink writes each brief as markdown and HTML under Dir.
type FileSink struct {
	Dir string
}

// Name implements Sink.
func (FileSink) Name() string { return "file" }

// Deliver implements Sink.
func (f FileSink) Deliver(_ context.Context, _ *model.Run, briefs []model.Brief) error {
	if len(briefs) == 0 {
		return nil
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return eris.Wrap(err, "brief: create output dir")
	}
	for _, b := range briefs {
		path := filepath.Join(f.Dir, b.Path)
		if err := os.WriteFile(path, []byte(b.Text), 0o644); err != nil {
			return eris.Wrapf(err, "brief: write %s", path)
		}
		if b.HTML == "" {
			continue
		}
		htmlPath := path[:len(path)-len(filepath.Ext(path))] + ".html"
		if err := os.WriteFile(htmlPath, []byte(b.HTML), 0o644); err != nil {
			return eris.Wrapf(err, "brief: write %s", htmlPath)
		}
	}
	return nil
}
