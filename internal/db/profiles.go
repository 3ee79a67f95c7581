package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/types"
)

// Relationship kinds stored in the connections table
const (
	ConnectionConnected = "connected"
	ConnectionBlocked   = "blocked"
)

const profileColumns = `id, role, name, avatar_url, bio, skills, industries, availability,
	preferences, expertise_domains, years_experience, last_active_at`

func scanProfile(row pgx.Row) (*types.Profile, error) {
	var p types.Profile
	var role string
	err := row.Scan(&p.ID, &role, &p.Name, &p.AvatarURL, &p.Bio, &p.Skills, &p.Industries,
		&p.Availability, &p.Preferences, &p.ExpertiseDomains, &p.YearsExperience, &p.LastActiveAt)
	if err != nil {
		return nil, err
	}
	p.Role = types.Role(role)
	return &p, nil
}

// GetProfile retrieves a profile by ID. Returns nil, nil if not found.
func (db *DB) GetProfile(ctx context.Context, id uuid.UUID) (*types.Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// LoadPool returns the profiles of role that subjectID may be matched with,
// most recently active first. The subject and every profile it shares a
// connection or block with, in either direction, are excluded.
func (db *DB) LoadPool(ctx context.Context, subjectID uuid.UUID, role types.Role) ([]types.Profile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles p
		 WHERE p.role = $2
		   AND p.id <> $1
		   AND NOT EXISTS (
		       SELECT 1 FROM connections c
		       WHERE (c.profile_id = $1 AND c.other_id = p.id)
		          OR (c.profile_id = p.id AND c.other_id = $1)
		   )
		 ORDER BY p.last_active_at DESC, p.id`,
		subjectID, string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate pool: %w", err)
	}
	defer rows.Close()

	pool := []types.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		if err := p.Validate(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("candidate_id", p.ID.String()).Msg("skipping invalid candidate profile")
			continue
		}
		pool = append(pool, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate pool: %w", err)
	}
	return pool, nil
}

// UpsertProfile inserts or replaces a profile. A zero ID is assigned by the database.
func (db *DB) UpsertProfile(ctx context.Context, p *types.Profile) (*types.Profile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	lastActive := p.LastActiveAt
	if lastActive.IsZero() {
		lastActive = db.now()
	}

	saved, err := scanProfile(db.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, role, name, avatar_url, bio, skills, industries, availability,
		                       preferences, expertise_domains, years_experience, last_active_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
		     role = EXCLUDED.role, name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url,
		     bio = EXCLUDED.bio, skills = EXCLUDED.skills, industries = EXCLUDED.industries,
		     availability = EXCLUDED.availability, preferences = EXCLUDED.preferences,
		     expertise_domains = EXCLUDED.expertise_domains,
		     years_experience = EXCLUDED.years_experience, last_active_at = EXCLUDED.last_active_at
		 RETURNING `+profileColumns,
		p.ID, string(p.Role), p.Name, p.AvatarURL, p.Bio, nonNil(p.Skills), nonNil(p.Industries),
		p.Availability, nonNil(p.Preferences), nonNil(p.ExpertiseDomains), p.YearsExperience, lastActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return saved, nil
}

// AddConnection records a relationship that excludes both profiles from each
// other's candidate pools.
func (db *DB) AddConnection(ctx context.Context, profileID, otherID uuid.UUID, kind string) error {
	if kind != ConnectionConnected && kind != ConnectionBlocked {
		return fmt.Errorf("unknown connection kind %q", kind)
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO connections (profile_id, other_id, kind)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (profile_id, other_id) DO UPDATE SET kind = EXCLUDED.kind`,
		profileID, otherID, kind,
	)
	if err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
