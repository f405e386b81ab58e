package landscape

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/patent-scout/internal/model"
)

// --- PatentSource Mock ---

type mockSource struct {
	mock.Mock
	name string
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Search(ctx context.Context, query string, maxResults int) ([]model.Patent, error) {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Patent), args.Error(1)
}

// --- Cache Mock ---

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetCachedPatents(ctx context.Context, source, query string) ([]model.Patent, bool, error) {
	args := m.Called(ctx, source, query)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]model.Patent), args.Bool(1), args.Error(2)
}

func (m *mockCache) SetCachedPatents(ctx context.Context, source, query string, patents []model.Patent, ttl time.Duration) error {
	args := m.Called(ctx, source, query, patents, ttl)
	return args.Error(0)
}
