package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/metrics"
	"github.com/jonathan/founder-match/internal/ranking"
	"github.com/jonathan/founder-match/internal/types"
)

// NoCandidatesMessage is returned with an empty result when the pool is empty.
const NoCandidatesMessage = "No candidates available for matching"

// Settings tunes the recommendation flow.
type Settings struct {
	K                   int
	FreshnessWindow     time.Duration
	MaxPoolSize         int // 0 passes the whole pool to the oracle
	PercentageTolerance int
	EnrichConcurrency   int
	Fallback            ranking.FallbackRanker
}

// DefaultSettings returns two recommendations per subject, fresh for a day.
func DefaultSettings() Settings {
	return Settings{
		K:                   2,
		FreshnessWindow:     24 * time.Hour,
		MaxPoolSize:         50,
		PercentageTolerance: 1,
		EnrichConcurrency:   4,
		Fallback:            ranking.DefaultFallbackRanker(),
	}
}

// Deps are the collaborators of a Service. Oracle may be nil, in which case
// every generation uses the fallback ranker.
type Deps struct {
	Cache    CacheStore
	Pool     PoolLoader
	Profiles ProfileReader
	Oracle   ranking.Oracle
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the recommendation orchestrator.
type Service struct {
	deps      Deps
	settings  Settings
	validator *ranking.Validator
	enricher  *Enricher
	now       func() time.Time
}

// NewService wires a Service from its collaborators.
func NewService(deps Deps, settings Settings, opts ...Option) *Service {
	s := &Service{
		deps:      deps,
		settings:  settings,
		validator: ranking.NewValidator(settings.K, settings.PercentageTolerance),
		enricher:  NewEnricher(deps.Profiles, settings.EnrichConcurrency),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of GetRecommendations.
type Result struct {
	Recommendations []types.EnrichedRecommendation
	Cached          bool
	Message         string
}

// Response converts r into the API response body.
func (r *Result) Response() types.RecommendationsResponse {
	recs := r.Recommendations
	if recs == nil {
		recs = []types.EnrichedRecommendation{}
	}
	return types.RecommendationsResponse{
		Recommendations: recs,
		Cached:          r.Cached,
		Message:         r.Message,
	}
}

// GetRecommendations returns up to K ranked, enriched recommendations for the
// subject. A fresh cached set is served unless refresh is set; otherwise a new
// set is generated from the candidate pool and persisted.
//
// Only ErrSubjectNotFound, a failed subject lookup and *PoolLoadError are
// returned as errors. Oracle, validation and cache failures degrade silently.
func (s *Service) GetRecommendations(ctx context.Context, subjectID uuid.UUID, refresh bool) (*Result, error) {
	log := logging.Ctx(ctx).With().
		Str("component", "recommend").
		Str("subject_id", subjectID.String()).
		Logger()

	subject, err := s.deps.Profiles.GetProfile(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subject profile: %w", err)
	}
	if subject == nil {
		return nil, ErrSubjectNotFound
	}
	candidateRole, hasComplement := types.ComplementaryRole(subject.Role)

	if !refresh {
		if cached := s.cachedRecords(ctx, &log, subjectID); len(cached) > 0 {
			log.Debug().Int("count", len(cached)).Msg("serving cached recommendations")
			return &Result{
				Recommendations: s.enricher.Enrich(ctx, cached, candidateRole),
				Cached:          true,
			}, nil
		}
	} else if err := s.deps.Cache.DeleteRecommendations(ctx, subjectID); err != nil {
		metrics.PersistenceFailures.WithLabelValues("delete").Inc()
		log.Warn().Err(err).Str("operation", "delete").Msg("failed to clear cached recommendations")
	}

	var pool []types.Profile
	if hasComplement {
		pool, err = s.deps.Pool.LoadPool(ctx, subjectID, candidateRole)
		if err != nil {
			log.Error().Err(err).Msg("failed to load candidate pool")
			return nil, &PoolLoadError{SubjectID: subjectID, Err: err}
		}
	}
	pool = excludeSubject(pool, subjectID)
	if len(pool) == 0 {
		log.Info().Str("role", string(subject.Role)).Msg("empty candidate pool")
		return &Result{
			Recommendations: []types.EnrichedRecommendation{},
			Message:         NoCandidatesMessage,
		}, nil
	}
	if s.settings.MaxPoolSize > 0 && len(pool) > s.settings.MaxPoolSize {
		log.Debug().Int("pool_size", len(pool)).Int("cap", s.settings.MaxPoolSize).Msg("capping candidate pool")
		pool = pool[:s.settings.MaxPoolSize]
	}

	// Generation outlives the caller so an abandoned request still fills the cache.
	genCtx := context.WithoutCancel(ctx)

	ranked := s.rank(genCtx, &log, subject, pool)
	records := ranking.Records(subjectID, ranked, s.now())

	if err := s.deps.Cache.InsertRecommendations(genCtx, subjectID, records); err != nil {
		metrics.PersistenceFailures.WithLabelValues("insert").Inc()
		log.Warn().Err(err).Str("operation", "insert").Msg("failed to persist recommendations")
	}

	return &Result{
		Recommendations: s.enricher.Enrich(ctx, records, candidateRole),
	}, nil
}

// cachedRecords returns the fresh cached set, newest row per candidate, sorted
// and truncated to K. Read failures count as a miss.
func (s *Service) cachedRecords(ctx context.Context, log *zerolog.Logger, subjectID uuid.UUID) []types.Recommendation {
	records, err := s.deps.Cache.GetRecommendations(ctx, subjectID, s.settings.FreshnessWindow)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(metrics.CacheError).Inc()
		log.Warn().Err(err).Msg("cache read failed, regenerating")
		return nil
	}

	now := s.now()
	newest := make(map[uuid.UUID]int, len(records))
	fresh := make([]types.Recommendation, 0, len(records))
	for _, rec := range records {
		if !rec.IsFresh(now, s.settings.FreshnessWindow) {
			continue
		}
		if i, ok := newest[rec.CandidateID]; ok {
			if rec.CreatedAt.After(fresh[i].CreatedAt) {
				fresh[i] = rec
			}
			continue
		}
		newest[rec.CandidateID] = len(fresh)
		fresh = append(fresh, rec)
	}

	if len(fresh) == 0 {
		metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
		return nil
	}
	metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()

	sort.SliceStable(fresh, func(a, b int) bool {
		return fresh[a].Score > fresh[b].Score
	})
	if len(fresh) > s.settings.K {
		fresh = fresh[:s.settings.K]
	}
	return fresh
}

// rank scores pool with the oracle, substituting the fallback ranker on any
// oracle or validation failure. It never calls the oracle twice.
func (s *Service) rank(ctx context.Context, log *zerolog.Logger, subject *types.Profile, pool []types.Profile) []ranking.Ranked {
	k := s.settings.K

	if s.deps.Oracle == nil {
		metrics.Generations.WithLabelValues(string(types.SourceFallback)).Inc()
		log.Debug().Msg("no scoring oracle configured, using fallback ranking")
		return s.settings.Fallback.Rank(pool, k)
	}

	start := time.Now()
	text, err := s.deps.Oracle.Score(ctx, subject, pool, k)
	metrics.ObserveOracle(start)
	if err != nil {
		reason := "error"
		var oe *ranking.OracleError
		if errors.As(err, &oe) {
			reason = oe.Reason()
		}
		metrics.OracleFailures.WithLabelValues(reason).Inc()
		metrics.Generations.WithLabelValues(string(types.SourceFallback)).Inc()
		log.Warn().Err(err).Str("reason", reason).Msg("scoring oracle failed, using fallback ranking")
		return s.settings.Fallback.Rank(pool, k)
	}

	ranked, issues, err := s.validator.Validate(text, pool)
	if err != nil {
		metrics.OracleFailures.WithLabelValues("invalid").Inc()
		metrics.Generations.WithLabelValues(string(types.SourceFallback)).Inc()
		log.Warn().Err(err).Msg("oracle response unusable, using fallback ranking")
		return s.settings.Fallback.Rank(pool, k)
	}
	if len(issues) > 0 {
		log.Debug().Int("discarded", len(issues)).Str("first_issue", issues[0].String()).Msg("discarded invalid oracle records")
	}

	metrics.Generations.WithLabelValues(string(types.SourceOracle)).Inc()
	return ranked
}

// excludeSubject drops the subject from its own pool.
func excludeSubject(pool []types.Profile, subjectID uuid.UUID) []types.Profile {
	out := pool[:0:0]
	for _, p := range pool {
		if p.ID != subjectID {
			out = append(out, p)
		}
	}
	return out
}
