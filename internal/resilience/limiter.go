package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// defaultSourceInterval mirrors the fixed two-second pause the scanner has
// always left between calls to one patent source.
const defaultSourceInterval = 2 * time.Second

// SourceLimiters hands out one shared limiter per external source name.
// Every caller of a given source waits on the same limiter regardless of
// which bottleneck pipeline it belongs to.
type SourceLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// NewSourceLimiters creates a registry that admits one call per interval
// for each source. A non-positive interval uses the two-second default.
func NewSourceLimiters(interval time.Duration) *SourceLimiters {
	if interval <= 0 {
		interval = defaultSourceInterval
	}
	return &SourceLimiters{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Set overrides the limiter for one source.
func (s *SourceLimiters) Set(source string, lim *rate.Limiter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[source] = lim
}

// Get returns the limiter for source, creating it on first use.
func (s *SourceLimiters) Get(source string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lim, ok := s.limiters[source]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(s.interval), 1)
	s.limiters[source] = lim
	return lim
}

// Wait blocks until source may be called again or ctx is done. A nil
// registry never blocks.
func (s *SourceLimiters) Wait(ctx context.Context, source string) error {
	if s == nil {
		return nil
	}
	if err := s.Get(source).Wait(ctx); err != nil {
		return eris.Wrapf(err, "rate limit %s", source)
	}
	return nil
}
