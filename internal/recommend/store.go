// Package recommend serves ranked recommendations for a subject, from cache
// when a fresh set exists and by generating and persisting a new set otherwise.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/types"
)

// CacheStore persists recommendation records. Implementations return an empty
// result, not an error, when nothing is stored for a subject.
type CacheStore interface {
	// GetRecommendations returns the subject's records created less than window ago, in any order.
	GetRecommendations(ctx context.Context, subjectID uuid.UUID, window time.Duration) ([]types.Recommendation, error)
	// DeleteRecommendations removes every record for the subject. It is idempotent.
	DeleteRecommendations(ctx context.Context, subjectID uuid.UUID) error
	// InsertRecommendations appends records for the subject.
	InsertRecommendations(ctx context.Context, subjectID uuid.UUID, records []types.Recommendation) error
}

// PoolLoader loads the candidates a subject may be matched with: profiles of
// the given role, excluding the subject and anyone it is connected to or has blocked.
type PoolLoader interface {
	LoadPool(ctx context.Context, subjectID uuid.UUID, role types.Role) ([]types.Profile, error)
}

// ProfileReader looks up profiles by id. A missing profile is (nil, nil).
type ProfileReader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*types.Profile, error)
}

// ErrSubjectNotFound is returned when the requesting user has no profile.
var ErrSubjectNotFound = errors.New("subject profile not found")

// PoolLoadError means the candidate pool could not be loaded. There is no
// fallback for it.
type PoolLoadError struct {
	SubjectID uuid.UUID
	Err       error
}

func (e *PoolLoadError) Error() string {
	return fmt.Sprintf("failed to load candidate pool for %s: %v", e.SubjectID, e.Err)
}

func (e *PoolLoadError) Unwrap() error {
	return e.Err
}
