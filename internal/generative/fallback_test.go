package generative_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medreport/internal/generative"
	"medreport/internal/port"
	"medreport/mocks"
)

func completion(provider string) *port.Completion {
	return &port.Completion{Text: `{"findings":"x"}`, Model: provider + "-model", Provider: provider}
}

var testRequest = port.CompletionRequest{Prompt: "structure this", MaxTokens: 100}

func newChain(c1, c2 port.Completer) *generative.ProviderChain {
	return generative.NewProviderChain([]generative.NamedCompleter{
		{Name: "claude", Completer: c1},
		{Name: "gemini", Completer: c2},
	}, zerolog.Nop())
}

func TestProviderChain_FirstSucceeds(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, testRequest).Return(completion("claude"), nil)

	fc := newChain(c1, c2)

	out, err := fc.Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, "claude", out.Provider)
	c2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestProviderChain_FirstFails_SecondSucceeds(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, testRequest).Return(nil, errors.New("boom"))
	c2.On("Complete", mock.Anything, testRequest).Return(completion("gemini"), nil)

	fc := newChain(c1, c2)

	out, err := fc.Complete(context.Background(), testRequest)

	require.NoError(t, err)
	assert.Equal(t, "gemini", out.Provider)
}

func TestProviderChain_RateLimitedProviderIsSkippedNextTime(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, testRequest).Return(nil, generative.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	c2.On("Complete", mock.Anything, testRequest).Return(completion("gemini"), nil).Twice()

	fc := newChain(c1, c2)

	_, err := fc.Complete(context.Background(), testRequest)
	require.NoError(t, err)
	_, err = fc.Complete(context.Background(), testRequest)
	require.NoError(t, err)

	c1.AssertNumberOfCalls(t, "Complete", 1)
	c2.AssertNumberOfCalls(t, "Complete", 2)
}

func TestProviderChain_AllRateLimited(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, testRequest).Return(nil, generative.NewRateLimitError("claude", errors.New("429"), 60))
	c2.On("Complete", mock.Anything, testRequest).Return(nil, generative.NewRateLimitError("gemini", errors.New("429"), 30))

	fc := newChain(c1, c2)

	out, err := fc.Complete(context.Background(), testRequest)

	assert.Nil(t, out)
	var rlErr *generative.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
	assert.LessOrEqual(t, rlErr.RetryAfter, 30*time.Second)

	_, err = fc.Complete(context.Background(), testRequest)
	require.ErrorAs(t, err, &rlErr)
	c1.AssertNumberOfCalls(t, "Complete", 1)
	c2.AssertNumberOfCalls(t, "Complete", 1)
}

func TestProviderChain_AllFail(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	c1.On("Complete", mock.Anything, testRequest).Return(nil, generative.NewRateLimitError("claude", errors.New("429"), 60))
	c2.On("Complete", mock.Anything, testRequest).Return(nil, errors.New("server error"))

	fc := newChain(c1, c2)

	_, err := fc.Complete(context.Background(), testRequest)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.Contains(t, err.Error(), "gemini: server error")
	var rlErr *generative.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestProviderChain_StopsWhenContextDone(t *testing.T) {
	c1 := new(mocks.MockCompleter)
	c2 := new(mocks.MockCompleter)
	ctx, cancel := context.WithCancel(context.Background())
	c1.On("Complete", mock.Anything, testRequest).Run(func(mock.Arguments) { cancel() }).Return(nil, context.Canceled)

	fc := newChain(c1, c2)

	_, err := fc.Complete(ctx, testRequest)

	assert.ErrorIs(t, err, context.Canceled)
	c2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}
