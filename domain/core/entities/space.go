package entities

import (
	"time"

	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"
)

// Space is a shared workspace that owns members and journal entries
type Space struct {
	id          valueobjects.SpaceID
	name        string
	description string
	ownerUserID string
	joinCode    string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewSpace creates a space. The creator becomes the owner; the caller is
// responsible for materializing the owner membership row alongside it.
func NewSpace(name, description, ownerUserID string) (*Space, error) {
	if name == "" {
		return nil, pkgerrors.NewValidationError("space name cannot be empty")
	}
	if ownerUserID == "" {
		return nil, pkgerrors.NewValidationError("owner user ID cannot be empty")
	}

	now := time.Now().UTC()
	return &Space{
		id:          valueobjects.NewSpaceID(),
		name:        name,
		description: description,
		ownerUserID: ownerUserID,
		joinCode:    valueobjects.NewJoinCode(),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructSpace rebuilds a space from repository data
func ReconstructSpace(id valueobjects.SpaceID, name, description, ownerUserID, joinCode string, createdAt, updatedAt time.Time) *Space {
	return &Space{
		id:          id,
		name:        name,
		description: description,
		ownerUserID: ownerUserID,
		joinCode:    joinCode,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (s *Space) ID() valueobjects.SpaceID { return s.id }
func (s *Space) Name() string             { return s.name }
func (s *Space) Description() string      { return s.description }
func (s *Space) OwnerUserID() string      { return s.ownerUserID }
func (s *Space) JoinCode() string         { return s.joinCode }
func (s *Space) CreatedAt() time.Time     { return s.createdAt }
func (s *Space) UpdatedAt() time.Time     { return s.updatedAt }

// Rename updates the space's display fields
func (s *Space) Rename(name, description string) error {
	if name == "" {
		return pkgerrors.NewValidationError("space name cannot be empty")
	}
	s.name = name
	s.description = description
	s.updatedAt = time.Now().UTC()
	return nil
}

// RotateJoinCode replaces the space's join code and returns the new code.
// The previous code becomes invalid once the new mapping is persisted.
func (s *Space) RotateJoinCode() string {
	s.joinCode = valueobjects.NewJoinCode()
	s.updatedAt = time.Now().UTC()
	return s.joinCode
}
