//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComplementaryRole(t *testing.T) {
	tests := []struct {
		role   Role
		want   Role
		wantOK bool
	}{
		{RoleFounder, RoleMentor, true},
		{RoleMentor, RoleFounder, true},
		{RoleCofounder, RoleFounder, true},
		{Role("investor"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, ok := ComplementaryRole(tt.role)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfile_Validate(t *testing.T) {
	t.Run("valid mentor", func(t *testing.T) {
		p := Profile{ID: uuid.New(), Role: RoleMentor, Name: "Grace", YearsExperience: 12}
		assert.NoError(t, p.Validate())
	})

	t.Run("unknown role", func(t *testing.T) {
		p := Profile{ID: uuid.New(), Role: Role("investor")}
		assert.Error(t, p.Validate())
	})

	t.Run("bad avatar url", func(t *testing.T) {
		p := Profile{ID: uuid.New(), Role: RoleFounder, AvatarURL: "not a url"}
		assert.Error(t, p.Validate())
	})

	t.Run("negative experience", func(t *testing.T) {
		p := Profile{ID: uuid.New(), Role: RoleMentor, YearsExperience: -1}
		assert.Error(t, p.Validate())
	})
}

func TestProfile_PrimaryDomain(t *testing.T) {
	assert.Equal(t, "Fintech", (&Profile{ExpertiseDomains: []string{"Fintech"}, Industries: []string{"Health"}}).PrimaryDomain())
	assert.Equal(t, "Health", (&Profile{Industries: []string{"", "Health"}, Skills: []string{"Go"}}).PrimaryDomain())
	assert.Equal(t, "Go", (&Profile{Skills: []string{"Go"}}).PrimaryDomain())
	assert.Empty(t, (&Profile{}).PrimaryDomain())
}

func TestPlaceholderDisplay(t *testing.T) {
	assert.Equal(t, "Anonymous Mentor", PlaceholderDisplay(RoleMentor).Name)
	assert.Equal(t, "Anonymous Co-founder", PlaceholderDisplay(RoleCofounder).Name)
	assert.Equal(t, "Anonymous Member", PlaceholderDisplay(Role("")).Name)
}
