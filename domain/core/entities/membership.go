package entities

import (
	"time"

	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"
)

// Role is the role a user holds within a space
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the four known roles
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may add or remove members and
// create invitations
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanWrite reports whether the role may author journal entries
func (r Role) CanWrite() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// Membership is the durable record that a user holds a role in a space.
// Keyed by (spaceID, userID); a user holds exactly one role per space.
type Membership struct {
	spaceID  valueobjects.SpaceID
	userID   string
	role     Role
	joinedAt time.Time
	addedBy  string
}

// NewMembership creates a membership row. Memberships are only created
// explicitly: space creation (owner), invitation acceptance, invite-code
// redemption, or an admin add.
func NewMembership(spaceID valueobjects.SpaceID, userID string, role Role, addedBy string) (*Membership, error) {
	if spaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("space ID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if !role.Valid() {
		return nil, pkgerrors.NewValidationError("invalid membership role")
	}

	return &Membership{
		spaceID:  spaceID,
		userID:   userID,
		role:     role,
		joinedAt: time.Now().UTC(),
		addedBy:  addedBy,
	}, nil
}

// ReconstructMembership rebuilds a membership from repository data
func ReconstructMembership(spaceID valueobjects.SpaceID, userID string, role Role, joinedAt time.Time, addedBy string) *Membership {
	return &Membership{
		spaceID:  spaceID,
		userID:   userID,
		role:     role,
		joinedAt: joinedAt,
		addedBy:  addedBy,
	}
}

func (m *Membership) SpaceID() valueobjects.SpaceID { return m.spaceID }
func (m *Membership) UserID() string                { return m.userID }
func (m *Membership) Role() Role                    { return m.role }
func (m *Membership) JoinedAt() time.Time           { return m.joinedAt }
func (m *Membership) AddedBy() string               { return m.addedBy }

// IsOwner reports whether this membership is the space's owner row
func (m *Membership) IsOwner() bool {
	return m.role == RoleOwner
}
