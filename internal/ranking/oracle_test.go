package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-match/internal/llm"
	"github.com/jonathan/founder-match/internal/types"
)

func TestLLMOracle_Success(t *testing.T) {
	pool := testPool(3)
	var gotPrompt string
	var gotTier llm.ModelTier

	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
			gotPrompt = prompt
			gotTier = tier
			return "[" + record(pool[0].ID, 0.9, "Great fit") + "]", nil
		},
	}

	oracle := NewLLMOracle(mockClient, llm.TierLite, time.Second)
	text, err := oracle.Score(context.Background(), testSubject(), pool, 2)

	require.NoError(t, err)
	assert.Contains(t, text, pool[0].ID.String())
	assert.Equal(t, llm.TierLite, gotTier)
	for _, c := range pool {
		assert.Contains(t, gotPrompt, c.ID.String())
	}
	assert.NotContains(t, gotPrompt, "{{.")
}

func TestLLMOracle_DefaultTier(t *testing.T) {
	var gotTier, modelTier llm.ModelTier
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, tier llm.ModelTier) (string, error) {
			gotTier = tier
			return "[]", nil
		},
		GetModelFunc: func(tier llm.ModelTier) string {
			modelTier = tier
			return "mock-model"
		},
	}

	_, err := NewLLMOracle(mockClient, "", 0).Score(context.Background(), testSubject(), testPool(1), 2)
	require.NoError(t, err)
	assert.Equal(t, llm.TierStandard, gotTier)
	assert.Equal(t, llm.TierStandard, modelTier)
}

func TestBuildPrompt_ProfileTextIsNotExpanded(t *testing.T) {
	pool := testPool(2)
	pool[0].Bio = "Ask me about {{.K}} or {{.Candidates}}"

	prompt, err := BuildPrompt(testSubject(), pool, 2)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Ask me about {{.K}} or {{.Candidates}}")
	assert.Contains(t, prompt, "Pick the 2 candidates")
}

func TestBuildPrompt_RoleWithoutComplement(t *testing.T) {
	subject := testSubject()
	subject.Role = types.Role("investor")

	prompt, err := BuildPrompt(subject, testPool(1), 2)
	require.NoError(t, err)
	assert.Contains(t, prompt, "looking for a match")
}

func TestLLMOracle_Failure(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("503 service unavailable")
		},
	}

	_, err := NewLLMOracle(mockClient, llm.TierStandard, time.Second).Score(context.Background(), testSubject(), testPool(2), 2)

	var oe *OracleError
	require.True(t, errors.As(err, &oe))
	assert.False(t, oe.Timeout)
	assert.Equal(t, "error", oe.Reason())
	assert.Contains(t, err.Error(), "503 service unavailable")
}

func TestLLMOracle_Timeout(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	start := time.Now()
	_, err := NewLLMOracle(mockClient, llm.TierStandard, 20*time.Millisecond).Score(context.Background(), testSubject(), testPool(2), 2)

	assert.Less(t, time.Since(start), 2*time.Second)
	var oe *OracleError
	require.True(t, errors.As(err, &oe))
	assert.True(t, oe.Timeout)
	assert.Equal(t, "timeout", oe.Reason())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLLMOracle_CircuitOpen(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", gobreaker.ErrOpenState
		},
	}

	_, err := NewLLMOracle(mockClient, llm.TierStandard, time.Second).Score(context.Background(), testSubject(), testPool(2), 2)

	var oe *OracleError
	require.True(t, errors.As(err, &oe))
	assert.True(t, oe.CircuitOpen)
	assert.Equal(t, "circuit_open", oe.Reason())
}

func TestLLMOracle_EmptyProviderResponse(t *testing.T) {
	mockClient := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", llm.ErrEmptyResponse
		},
	}

	_, err := NewLLMOracle(mockClient, llm.TierStandard, time.Second).Score(context.Background(), testSubject(), testPool(2), 2)

	var oe *OracleError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "empty", oe.Reason())
}

func TestBuildPrompt(t *testing.T) {
	pool := testPool(2)
	pool[0].Name = "Secret Name"

	prompt, err := BuildPrompt(testSubject(), pool, 2)
	require.NoError(t, err)

	assert.Contains(t, prompt, "founder looking for a mentor")
	assert.Contains(t, prompt, `"payments"`)
	assert.Contains(t, prompt, "Pick the 2 candidates")
	assert.NotContains(t, prompt, "Secret Name")
}
