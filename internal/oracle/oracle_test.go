package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/patent-scout/internal/resilience"
	"github.com/sells-group/patent-scout/pkg/anthropic"
	"github.com/sells-group/patent-scout/pkg/anthropic/mocks"
)

func textResponse(text string, in, out int64) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:      "msg_1",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: in, OutputTokens: out},
	}
}

func TestAnthropic_Complete(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-sonnet-4-5-20250929" &&
			req.MaxTokens == 512 &&
			len(req.System) == 1 && req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 && req.Messages[0].Content == "analyze this" &&
			req.Temperature != nil && *req.Temperature == 0.2
	})).Return(textResponse("  {\"ok\": true}\n", 1_000_000, 0), nil).Once()

	o := NewAnthropic(client, Config{Model: "claude-sonnet-4-5-20250929", MaxTokens: 512, Temperature: 0.2})
	text, err := o.Complete(context.Background(), Request{Phase: "capability", System: "catalog", Prompt: "analyze this"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, text)

	usage := o.(Metered).Usage()
	assert.Equal(t, 1_000_000, usage.InputTokens)
	assert.InDelta(t, 3.0, usage.Cost, 0.0001)
}

func TestAnthropic_CustomPricing(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("brief", 0, 1_000_000), nil).Twice()

	o := NewAnthropic(client, Config{Model: "custom", Pricing: anthropic.Pricing{OutputPerMTok: 2}})
	for range 2 {
		_, err := o.Complete(context.Background(), Request{Prompt: "p"})
		require.NoError(t, err)
	}
	usage := o.(Metered).Usage()
	assert.Equal(t, 2_000_000, usage.OutputTokens)
	assert.InDelta(t, 4.0, usage.Cost, 0.0001)
}

func TestAnthropic_ErrorIsOracleUnavailable(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("529 overloaded")).Once()

	o := NewAnthropic(client, Config{Model: "m"})
	_, err := o.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrOracleUnavailable)
}

func TestAnthropic_EmptyTextIsUnavailable(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("   ", 1, 1), nil).Once()

	o := NewAnthropic(client, Config{Model: "m"})
	_, err := o.Complete(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, resilience.ErrOracleUnavailable)
}

func TestAnthropic_CircuitOpensAfterFailures(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("boom")).Times(2)

	o := NewAnthropic(client, Config{
		Model:   "m",
		Circuit: resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour},
	})
	for range 3 {
		_, err := o.Complete(context.Background(), Request{Prompt: "p"})
		assert.ErrorIs(t, err, resilience.ErrOracleUnavailable)
	}
	// The third call is rejected by the open circuit without reaching the client.
	client.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestAnthropic_TimeoutApplied(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()

	o := NewAnthropic(client, Config{Model: "m", Timeout: 10 * time.Millisecond})
	_, err := o.Complete(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, resilience.ErrOracleUnavailable)
}

func TestDisabled(t *testing.T) {
	o := NewAnthropic(nil, Config{})
	_, ok := o.(Disabled)
	require.True(t, ok)

	_, err := o.Complete(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, resilience.ErrOracleUnavailable)
}
