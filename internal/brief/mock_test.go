package brief

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/oracle"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

type mockSink struct {
	mock.Mock
	name string
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Deliver(ctx context.Context, run *model.Run, briefs []model.Brief) error {
	args := m.Called(ctx, run, briefs)
	return args.Error(0)
}
