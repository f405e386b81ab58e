package capability

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/patent-scout/internal/oracle"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
