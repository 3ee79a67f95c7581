// Package types provides type definitions for structured data used throughout the founder-match system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Role identifies which side of the marketplace a profile belongs to.
type Role string

// Supported profile roles
const (
	RoleFounder   Role = "founder"
	RoleCofounder Role = "cofounder"
	RoleMentor    Role = "mentor"
)

// complements maps a subject role to the role of candidates it is matched against.
var complements = map[Role]Role{
	RoleFounder:   RoleMentor,
	RoleMentor:    RoleFounder,
	RoleCofounder: RoleFounder,
}

// ComplementaryRole returns the candidate role matched against the given subject role.
// The second return value is false for roles that have no counterpart.
func ComplementaryRole(role Role) (Role, bool) {
	r, ok := complements[role]
	return r, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFounder, RoleCofounder, RoleMentor:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleFounder:
		return "Founder"
	case RoleCofounder:
		return "Co-founder"
	case RoleMentor:
		return "Mentor"
	default:
		return "Member"
	}
}

// Profile is the matching view of a platform member. It describes both the
// subject requesting recommendations and every candidate considered for them.
type Profile struct {
	ID           uuid.UUID `json:"id" validate:"required"`
	Role         Role      `json:"role" validate:"required,oneof=founder cofounder mentor"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio          string    `json:"bio,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	Industries   []string  `json:"industries,omitempty"`
	Availability string    `json:"availability,omitempty"`
	Preferences  []string  `json:"preferences,omitempty"`

	// Role-specific attributes, populated for mentors and experienced co-founders
	ExpertiseDomains []string `json:"expertise_domains,omitempty"`
	YearsExperience  int      `json:"years_experience,omitempty" validate:"gte=0"`

	LastActiveAt time.Time `json:"last_active_at,omitempty"`
}

var profileValidator = validator.New()

// Validate checks the profile's struct constraints.
func (p *Profile) Validate() error {
	return profileValidator.Struct(p)
}

// PrimaryDomain returns the most specific area of expertise the profile declares,
// falling back from expertise domains to industries to skills.
func (p *Profile) PrimaryDomain() string {
	for _, list := range [][]string{p.ExpertiseDomains, p.Industries, p.Skills} {
		for _, v := range list {
			if v != "" {
				return v
			}
		}
	}
	return ""
}

// Display returns the fields of the profile shown alongside a recommendation.
func (p *Profile) Display() DisplayProfile {
	return DisplayProfile{
		Name:             p.Name,
		AvatarURL:        p.AvatarURL,
		Bio:              p.Bio,
		Role:             p.Role,
		Skills:           p.Skills,
		Industries:       p.Industries,
		ExpertiseDomains: p.ExpertiseDomains,
		YearsExperience:  p.YearsExperience,
		Availability:     p.Availability,
	}
}

// DisplayProfile holds the display data attached to an enriched recommendation.
type DisplayProfile struct {
	Name             string   `json:"name"`
	AvatarURL        string   `json:"avatar_url,omitempty"`
	Bio              string   `json:"bio,omitempty"`
	Role             Role     `json:"role,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Industries       []string `json:"industries,omitempty"`
	ExpertiseDomains []string `json:"expertise_domains,omitempty"`
	YearsExperience  int      `json:"years_experience,omitempty"`
	Availability     string   `json:"availability,omitempty"`
}

// PlaceholderDisplay returns the display data used when a candidate's profile
// cannot be loaded, e.g. "Anonymous Mentor".
func PlaceholderDisplay(role Role) DisplayProfile {
	return DisplayProfile{
		Name: "Anonymous " + role.DisplayName(),
		Role: role,
	}
}
