package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/types"
)

// fakeCache is an in-memory CacheStore with injectable failures.
type fakeCache struct {
	mu        sync.Mutex
	records   map[uuid.UUID][]types.Recommendation
	now       func() time.Time
	getErr    error
	deleteErr error
	insertErr error
	gets      int
	deletes   int
	inserts   int
}

func newFakeCache(now func() time.Time) *fakeCache {
	return &fakeCache{records: make(map[uuid.UUID][]types.Recommendation), now: now}
}

func (c *fakeCache) GetRecommendations(_ context.Context, subjectID uuid.UUID, window time.Duration) ([]types.Recommendation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	var out []types.Recommendation
	for _, r := range c.records[subjectID] {
		if r.IsFresh(c.now(), window) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *fakeCache) DeleteRecommendations(_ context.Context, subjectID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.records, subjectID)
	return nil
}

func (c *fakeCache) InsertRecommendations(_ context.Context, subjectID uuid.UUID, records []types.Recommendation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inserts++
	if c.insertErr != nil {
		return c.insertErr
	}
	c.records[subjectID] = append(c.records[subjectID], records...)
	return nil
}

func (c *fakeCache) stored(subjectID uuid.UUID) []types.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Recommendation(nil), c.records[subjectID]...)
}

// fakeProfiles serves profiles from a map and implements both ProfileReader and PoolLoader.
type fakeProfiles struct {
	mu         sync.Mutex
	profiles   map[uuid.UUID]*types.Profile
	pool       []types.Profile
	poolErr    error
	lookupErr  map[uuid.UUID]error
	subjectErr error
	poolLoads  int
	lastRole   types.Role
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (*types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lookupErr[id]; err != nil {
		return nil, err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) LoadPool(_ context.Context, _ uuid.UUID, role types.Role) ([]types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.poolLoads++
	f.lastRole = role
	if f.poolErr != nil {
		return nil, f.poolErr
	}
	return append([]types.Profile(nil), f.pool...), nil
}

// fakeOracle returns a scripted response.
type fakeOracle struct {
	mu       sync.Mutex
	response func(pool []types.Profile) (string, error)
	calls    int
	lastPool []types.Profile
}

func (o *fakeOracle) Score(_ context.Context, _ *types.Profile, pool []types.Profile, _ int) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	o.lastPool = pool
	return o.response(pool)
}

// healthyOracle scores the pool in reverse order, 0.95 then 0.85, ...
func healthyOracle() *fakeOracle {
	return &fakeOracle{response: func(pool []types.Profile) (string, error) {
		out := "["
		for i := len(pool) - 1; i >= 0; i-- {
			score := 0.95 - 0.1*float64(len(pool)-1-i)
			if score < 0 {
				score = 0
			}
			if i != len(pool)-1 {
				out += ","
			}
			out += fmt.Sprintf(`{"candidate_id":%q,"score":%.2f,"score_percentage":%d,"reasoning":"Strong overlap with %s"}`,
				pool[i].ID, score, types.ScorePercentage(score), pool[i].Name)
		}
		return out + "]", nil
	}}
}

// fixture bundles a subject, its mentor pool and the fakes serving them.
type fixture struct {
	subject  *types.Profile
	pool     []types.Profile
	profiles *fakeProfiles
	cache    *fakeCache
	now      time.Time
}

func newFixture(poolSize int) *fixture {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	subject := &types.Profile{
		ID:         uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001"),
		Role:       types.RoleFounder,
		Name:       "Grace",
		Industries: []string{"fintech"},
	}

	profiles := &fakeProfiles{
		profiles:  map[uuid.UUID]*types.Profile{subject.ID: subject},
		lookupErr: map[uuid.UUID]error{},
	}
	pool := make([]types.Profile, poolSize)
	for i := range pool {
		pool[i] = types.Profile{
			ID:               uuid.MustParse(fmt.Sprintf("bbbbbbbb-0000-4000-8000-%012d", i+1)),
			Role:             types.RoleMentor,
			Name:             fmt.Sprintf("Mentor %d", i+1),
			AvatarURL:        fmt.Sprintf("https://cdn.example.com/m%d.png", i+1),
			ExpertiseDomains: []string{"payments"},
		}
		profiles.profiles[pool[i].ID] = &pool[i]
	}
	profiles.pool = pool

	f := &fixture{subject: subject, pool: pool, profiles: profiles, now: now}
	f.cache = newFakeCache(f.clock)
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) service(oracle *fakeOracle) *Service {
	deps := Deps{Cache: f.cache, Pool: f.profiles, Profiles: f.profiles}
	if oracle != nil {
		deps.Oracle = oracle
	}
	return NewService(deps, DefaultSettings(), WithClock(f.clock))
}
