package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spaces-backend/domain/core/valueobjects"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role          Role
		valid         bool
		manageMembers bool
		write         bool
	}{
		{RoleOwner, true, true, true},
		{RoleAdmin, true, true, true},
		{RoleMember, true, false, true},
		{RoleViewer, true, false, false},
		{Role("superuser"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.manageMembers, tt.role.CanManageMembers())
			assert.Equal(t, tt.write, tt.role.CanWrite())
		})
	}
}

func TestNewMembership(t *testing.T) {
	spaceID := valueobjects.NewSpaceID()

	m, err := NewMembership(spaceID, "u-alice", RoleMember, "u-bob")
	require.NoError(t, err)
	assert.Equal(t, spaceID, m.SpaceID())
	assert.Equal(t, "u-alice", m.UserID())
	assert.Equal(t, RoleMember, m.Role())
	assert.Equal(t, "u-bob", m.AddedBy())
	assert.False(t, m.JoinedAt().IsZero())
	assert.False(t, m.IsOwner())
}

func TestNewMembership_Validation(t *testing.T) {
	spaceID := valueobjects.NewSpaceID()

	_, err := NewMembership(valueobjects.SpaceID{}, "u-alice", RoleMember, "")
	assert.Error(t, err)

	_, err = NewMembership(spaceID, "", RoleMember, "")
	assert.Error(t, err)

	_, err = NewMembership(spaceID, "u-alice", Role("superuser"), "")
	assert.Error(t, err)
}
