package recommend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/types"
)

// Enricher joins recommendation records with candidate display data.
type Enricher struct {
	profiles    ProfileReader
	concurrency int
}

// NewEnricher creates an Enricher running at most concurrency lookups at once.
func NewEnricher(profiles ProfileReader, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{profiles: profiles, concurrency: concurrency}
}

// Enrich looks up every candidate and attaches its display profile. Output
// order matches records. A failed or empty lookup yields a placeholder for
// candidateRole instead of dropping the record.
func (e *Enricher) Enrich(ctx context.Context, records []types.Recommendation, candidateRole types.Role) []types.EnrichedRecommendation {
	out := make([]types.EnrichedRecommendation, len(records))
	log := logging.Ctx(ctx)

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i := range records {
		rec := records[i]
		g.Go(func() error {
			display := types.PlaceholderDisplay(candidateRole)

			profile, err := e.profiles.GetProfile(ctx, rec.CandidateID)
			switch {
			case err != nil:
				log.Warn().Err(err).Str("candidate_id", rec.CandidateID.String()).Msg("candidate lookup failed, using placeholder")
			case profile == nil:
				log.Warn().Str("candidate_id", rec.CandidateID.String()).Msg("candidate profile missing, using placeholder")
			default:
				display = profile.Display()
				if display.Name == "" {
					display.Name = types.PlaceholderDisplay(profile.Role).Name
				}
			}

			out[i] = types.EnrichedRecommendation{
				CandidateID:     rec.CandidateID,
				Score:           rec.Score,
				ScorePercentage: rec.ScorePercentage,
				Reasoning:       rec.Reasoning,
				Source:          rec.Source,
				Profile:         display,
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
