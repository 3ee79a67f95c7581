package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-match/internal/types"
)

func TestFallbackRanker_TopTwo(t *testing.T) {
	pool := testPool(5)

	ranked := DefaultFallbackRanker().Rank(pool, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, pool[0].ID, ranked[0].CandidateID)
	assert.Equal(t, pool[1].ID, ranked[1].CandidateID)
	assert.Equal(t, 0.8, ranked[0].Score)
	assert.Equal(t, 0.7, ranked[1].Score)
	for _, r := range ranked {
		assert.Equal(t, types.SourceFallback, r.Source)
	}
}

func TestFallbackRanker_Floor(t *testing.T) {
	ranked := DefaultFallbackRanker().Rank(testPool(6), 6)

	scores := make([]float64, 0, len(ranked))
	for _, r := range ranked {
		scores = append(scores, r.Score)
	}
	assert.Equal(t, []float64{0.8, 0.7, 0.6, 0.5, 0.5, 0.5}, scores)
}

func TestFallbackRanker_PoolSmallerThanK(t *testing.T) {
	ranked := DefaultFallbackRanker().Rank(testPool(1), 2)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.8, ranked[0].Score)
}

func TestFallbackRanker_EmptyInputs(t *testing.T) {
	f := DefaultFallbackRanker()
	assert.Empty(t, f.Rank(nil, 2))
	assert.Empty(t, f.Rank(testPool(3), 0))
	assert.NotNil(t, f.Rank(nil, 2))
}

func TestFallbackRanker_Deterministic(t *testing.T) {
	pool := testPool(4)
	f := DefaultFallbackRanker()

	assert.Equal(t, f.Rank(pool, 3), f.Rank(pool, 3))
}

func TestFallbackRanker_ReasoningUsesCandidateDomain(t *testing.T) {
	pool := []types.Profile{
		{ID: uuid.New(), Role: types.RoleMentor, ExpertiseDomains: []string{"climate"}},
		{ID: uuid.New(), Role: types.RoleMentor, Industries: []string{"retail"}},
		{ID: uuid.New(), Role: types.RoleMentor},
	}

	ranked := DefaultFallbackRanker().Rank(pool, 3)

	assert.Equal(t, "Fallback recommendation based on availability and expertise in climate", ranked[0].Reasoning)
	assert.Equal(t, "Fallback recommendation based on availability and expertise in retail", ranked[1].Reasoning)
	assert.Equal(t, "Fallback recommendation based on availability and expertise in their field", ranked[2].Reasoning)
}

func TestFallbackRanker_RecordsKeepPercentageInvariant(t *testing.T) {
	subjectID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := Records(subjectID, DefaultFallbackRanker().Rank(testPool(5), 5), now)

	require.Len(t, records, 5)
	for _, rec := range records {
		require.NoError(t, rec.Validate())
		assert.Equal(t, types.ScorePercentage(rec.Score), rec.ScorePercentage)
		assert.Equal(t, subjectID, rec.SubjectID)
		assert.Equal(t, now, rec.CreatedAt)
	}
	assert.Equal(t, 80, records[0].ScorePercentage)
	assert.Equal(t, 70, records[1].ScorePercentage)
}

func TestFallbackRanker_CustomConstants(t *testing.T) {
	f := FallbackRanker{Start: 0.9, Step: 0.25, Floor: 0.3}
	ranked := f.Rank(testPool(4), 4)

	assert.Equal(t, 0.9, ranked[0].Score)
	assert.Equal(t, 0.65, ranked[1].Score)
	assert.Equal(t, 0.4, ranked[2].Score)
	assert.Equal(t, 0.3, ranked[3].Score)
}
