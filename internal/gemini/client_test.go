package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestExtractTextConcatenatesFirstCandidate(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "Hello"},
						{Text: ", "},
						{},
						{Text: "world"},
					},
				},
			},
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: "second candidate ignored"}},
				},
			},
		},
	}
	require.Equal(t, "Hello, world", extractText(resp))
}

func TestExtractTextEmptyResponse(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", extractText(nil))
	require.Equal(t, "", extractText(&genai.GenerateContentResponse{}))
	require.Equal(t, "", extractText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}))
}

func TestUsageTotal(t *testing.T) {
	t.Parallel()

	_, ok := usageTotal(&genai.GenerateContentResponse{})
	require.False(t, ok)

	total, ok := usageTotal(&genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{TotalTokenCount: 123},
	})
	require.True(t, ok)
	require.Equal(t, int64(123), total)
}

func TestCountConfigMirrorsGenerateShape(t *testing.T) {
	t.Parallel()

	prompt := Prompt{SystemInstruction: "be brief", Tools: []string{"search"}}
	cfg := countConfig(prompt)
	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.Tools, 1)
	require.NotNil(t, cfg.Tools[0].GoogleSearch)

	bare := countConfig(Prompt{})
	require.Nil(t, bare.SystemInstruction)
	require.Empty(t, bare.Tools)
}

func TestIsInvalidPrompt(t *testing.T) {
	t.Parallel()

	require.True(t, IsInvalidPrompt(errors.New("400: parts must not be empty")))
	require.True(t, IsInvalidPrompt(&ProviderError{Message: "Contents must not be empty"}))
	require.False(t, IsInvalidPrompt(errors.New("quota exceeded")))
	require.False(t, IsInvalidPrompt(nil))
}

func TestNormalizeErrorCarriesProviderMessage(t *testing.T) {
	t.Parallel()

	raw := genai.APIError{Code: 400, Message: "parts must not be empty"}
	err := normalizeError(fmt.Errorf("call: %w", raw))
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, "parts must not be empty", provErr.Message)
	require.True(t, IsInvalidPrompt(provErr))
}

func fixedStates(states ...genai.FileState) func(context.Context) (genai.FileState, error) {
	i := 0
	return func(context.Context) (genai.FileState, error) {
		if i >= len(states) {
			return states[len(states)-1], nil
		}
		s := states[i]
		i++
		return s, nil
	}
}

func noSleep(sleeps *int) func(context.Context, time.Duration) error {
	return func(context.Context, time.Duration) error {
		if sleeps != nil {
			*sleeps++
		}
		return nil
	}
}

func TestAwaitActiveImmediatelyReady(t *testing.T) {
	t.Parallel()

	sleeps := 0
	err := awaitActive(context.Background(), genai.FileStateActive, pollPolicy{
		attempts: 12,
		interval: time.Millisecond,
		sleep:    noSleep(&sleeps),
		status:   fixedStates(genai.FileStateActive),
	})
	require.NoError(t, err)
	require.Zero(t, sleeps)
}

func TestAwaitActiveFailedOnFirstPoll(t *testing.T) {
	t.Parallel()

	sleeps := 0
	err := awaitActive(context.Background(), genai.FileStateProcessing, pollPolicy{
		attempts: 12,
		interval: time.Millisecond,
		sleep:    noSleep(&sleeps),
		status:   fixedStates(genai.FileStateFailed),
	})
	var stagingErr *StagingError
	require.ErrorAs(t, err, &stagingErr)
	require.Equal(t, StagingProcessingFailed, stagingErr.Reason)
	require.Equal(t, 1, sleeps)
}

func TestAwaitActiveReadyMidway(t *testing.T) {
	t.Parallel()

	sleeps := 0
	err := awaitActive(context.Background(), genai.FileStateProcessing, pollPolicy{
		attempts: 12,
		interval: time.Millisecond,
		sleep:    noSleep(&sleeps),
		status:   fixedStates(genai.FileStateProcessing, genai.FileStateProcessing, genai.FileStateActive),
	})
	require.NoError(t, err)
	require.Equal(t, 3, sleeps)
}

func TestAwaitActiveTimesOutAfterBudget(t *testing.T) {
	t.Parallel()

	sleeps := 0
	err := awaitActive(context.Background(), genai.FileStateProcessing, pollPolicy{
		attempts: 4,
		interval: time.Millisecond,
		sleep:    noSleep(&sleeps),
		status:   fixedStates(genai.FileStateProcessing),
	})
	var stagingErr *StagingError
	require.ErrorAs(t, err, &stagingErr)
	require.Equal(t, StagingProcessingTimeout, stagingErr.Reason)
	require.Equal(t, 4, sleeps)
}

func TestAwaitActiveStatusError(t *testing.T) {
	t.Parallel()

	err := awaitActive(context.Background(), genai.FileStateProcessing, pollPolicy{
		attempts: 4,
		interval: time.Millisecond,
		sleep:    noSleep(nil),
		status: func(context.Context) (genai.FileState, error) {
			return genai.FileStateUnspecified, errors.New("boom")
		},
	})
	var stagingErr *StagingError
	require.ErrorAs(t, err, &stagingErr)
	require.Equal(t, StagingProcessingFailed, stagingErr.Reason)
}
