package ranking

import (
	"fmt"
	"math"

	"github.com/jonathan/founder-match/internal/types"
)

// FallbackRanker ranks a pool without the oracle. It is pure: the same pool
// order always yields the same scores and order.
type FallbackRanker struct {
	Start float64 // score of the first candidate
	Step  float64 // decrement per position
	Floor float64 // lowest score handed out
}

// DefaultFallbackRanker returns the ranker with scores 0.8, 0.7, ... down to 0.5.
func DefaultFallbackRanker() FallbackRanker {
	return FallbackRanker{Start: 0.8, Step: 0.1, Floor: 0.5}
}

// Rank takes the first k candidates in pool order and assigns descending scores.
func (f FallbackRanker) Rank(pool []types.Profile, k int) []Ranked {
	if k <= 0 || len(pool) == 0 {
		return []Ranked{}
	}
	if k > len(pool) {
		k = len(pool)
	}

	out := make([]Ranked, 0, k)
	for i := 0; i < k; i++ {
		candidate := &pool[i]
		out = append(out, Ranked{
			CandidateID: candidate.ID,
			Score:       f.score(i),
			Reasoning:   fallbackReasoning(candidate),
			Source:      types.SourceFallback,
		})
	}
	return out
}

// score rounds to two decimals so 0.8-0.1 is exactly 0.7 and percentages are stable.
func (f FallbackRanker) score(i int) float64 {
	s := f.Start - f.Step*float64(i)
	if s < f.Floor {
		s = f.Floor
	}
	s = math.Round(s*100) / 100
	return math.Min(1, math.Max(0, s))
}

func fallbackReasoning(candidate *types.Profile) string {
	domain := candidate.PrimaryDomain()
	if domain == "" {
		domain = "their field"
	}
	return fmt.Sprintf("Fallback recommendation based on availability and expertise in %s", domain)
}
