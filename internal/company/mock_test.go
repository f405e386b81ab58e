package company

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/patent-scout/internal/model"
)

// --- Source Mock ---

type mockSource struct {
	mock.Mock
	name string
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Search(ctx context.Context, keyword string) ([]model.Company, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Company), args.Error(1)
}
