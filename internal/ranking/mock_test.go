package ranking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/llm"
	"github.com/jonathan/founder-match/internal/types"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GetModelFunc     func(tier llm.ModelTier) string
	CloseFunc        func() error
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "[]", nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

func (m *MockLLMClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// testPool returns n mentor candidates with stable, distinct ids.
func testPool(n int) []types.Profile {
	domains := []string{"fintech", "climate", "devtools", "healthcare", "marketplaces"}
	pool := make([]types.Profile, n)
	for i := range pool {
		pool[i] = types.Profile{
			ID:               uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", i+1)),
			Role:             types.RoleMentor,
			Name:             fmt.Sprintf("Mentor %d", i+1),
			ExpertiseDomains: []string{domains[i%len(domains)]},
			Availability:     "weekly",
		}
	}
	return pool
}

func testSubject() *types.Profile {
	return &types.Profile{
		ID:         uuid.MustParse("11111111-1111-4111-8111-111111111111"),
		Role:       types.RoleFounder,
		Name:       "Ada",
		Skills:     []string{"go", "payments"},
		Industries: []string{"fintech"},
	}
}

func record(id uuid.UUID, score float64, reasoning string) string {
	return fmt.Sprintf(`{"candidate_id":%q,"score":%v,"score_percentage":%d,"reasoning":%q}`,
		id.String(), score, types.ScorePercentage(score), reasoning)
}
