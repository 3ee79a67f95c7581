// Package ranking scores a candidate pool for a subject: it calls the scoring
// oracle, validates what comes back and, when that fails, ranks locally.
package ranking

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/types"
)

// Ranked is one scored candidate, before it is tied to a subject and persisted.
type Ranked struct {
	CandidateID uuid.UUID
	Score       float64
	Reasoning   string
	Source      types.Source
}

// Record turns r into a recommendation record for subjectID created at now.
func (r Ranked) Record(subjectID uuid.UUID, now time.Time) types.Recommendation {
	return types.NewRecommendation(subjectID, r.CandidateID, r.Score, r.Reasoning, r.Source, now)
}

// Records converts a ranked list into records sharing one creation time.
func Records(subjectID uuid.UUID, ranked []Ranked, now time.Time) []types.Recommendation {
	out := make([]types.Recommendation, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Record(subjectID, now))
	}
	return out
}
