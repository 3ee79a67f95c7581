//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Source records which path produced a recommendation.
type Source string

// Recommendation sources
const (
	SourceOracle   Source = "oracle"
	SourceFallback Source = "fallback"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceOracle || s == SourceFallback
}

// Recommendation is a persisted, ranked match between a subject and a candidate.
// Records are immutable once written; ScorePercentage is always derived from Score.
type Recommendation struct {
	SubjectID       uuid.UUID `json:"subject_id"`
	CandidateID     uuid.UUID `json:"candidate_id"`
	Score           float64   `json:"score"`
	ScorePercentage int       `json:"score_percentage"`
	Reasoning       string    `json:"reasoning"`
	CreatedAt       time.Time `json:"created_at"`
	Source          Source    `json:"source"`
}

// NewRecommendation builds a record and derives ScorePercentage from score.
func NewRecommendation(subjectID, candidateID uuid.UUID, score float64, reasoning string, source Source, createdAt time.Time) Recommendation {
	return Recommendation{
		SubjectID:       subjectID,
		CandidateID:     candidateID,
		Score:           score,
		ScorePercentage: ScorePercentage(score),
		Reasoning:       reasoning,
		CreatedAt:       createdAt,
		Source:          source,
	}
}

// ScorePercentage converts a [0,1] score into its rounded [0,100] percentage.
func ScorePercentage(score float64) int {
	return int(math.Round(score * 100))
}

// IsFresh reports whether the record is still within the freshness window at now.
func (r *Recommendation) IsFresh(now time.Time, window time.Duration) bool {
	return now.Sub(r.CreatedAt) < window
}

// Validate enforces the record invariants.
func (r *Recommendation) Validate() error {
	var errs []error
	if r.SubjectID == uuid.Nil {
		errs = append(errs, errors.New("subject_id is required"))
	}
	if r.CandidateID == uuid.Nil {
		errs = append(errs, errors.New("candidate_id is required"))
	}
	if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 1 {
		errs = append(errs, fmt.Errorf("score %v out of range [0,1]", r.Score))
	}
	if r.ScorePercentage != ScorePercentage(r.Score) {
		errs = append(errs, fmt.Errorf("score_percentage %d does not match score %v", r.ScorePercentage, r.Score))
	}
	if r.Reasoning == "" {
		errs = append(errs, errors.New("reasoning is required"))
	}
	if !r.Source.Valid() {
		errs = append(errs, fmt.Errorf("unknown source %q", r.Source))
	}
	return errors.Join(errs...)
}

// EnrichedRecommendation is a recommendation joined with the candidate's display data.
// Source is kept for logs and the CLI but never serialized: callers are not told
// whether a ranking came from the oracle or the fallback.
type EnrichedRecommendation struct {
	CandidateID     uuid.UUID      `json:"candidate_id"`
	Score           float64        `json:"score"`
	ScorePercentage int            `json:"score_percentage"`
	Reasoning       string         `json:"reasoning"`
	Source          Source         `json:"-"`
	Profile         DisplayProfile `json:"profile"`
}

// RecommendationsResponse is the response body returned to callers.
type RecommendationsResponse struct {
	Recommendations []EnrichedRecommendation `json:"recommendations"`
	Cached          bool                     `json:"cached"`
	Message         string                   `json:"message,omitempty"`
}
