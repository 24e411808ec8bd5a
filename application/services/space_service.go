package services

import (
	"context"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/domain/events"
	pkgerrors "spaces-backend/pkg/errors"

	"go.uber.org/zap"
)

// SpaceService owns space lifecycle. Space creation is the only path that
// mints an owner membership row.
type SpaceService struct {
	spaces      ports.SpaceRepository
	memberships ports.MembershipRepository
	eventBus    ports.EventBus
	logger      *zap.Logger
}

// NewSpaceService creates a new space service
func NewSpaceService(
	spaces ports.SpaceRepository,
	memberships ports.MembershipRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *SpaceService {
	return &SpaceService{
		spaces:      spaces,
		memberships: memberships,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// CreateSpace creates a space, its join-code mapping, and the owner
// membership row for the creator.
func (s *SpaceService) CreateSpace(ctx context.Context, name, description, ownerUserID string) (*entities.Space, error) {
	space, err := entities.NewSpace(name, description, ownerUserID)
	if err != nil {
		return nil, err
	}

	if err := s.spaces.Create(ctx, space); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create space")
	}

	if err := s.spaces.PutJoinCode(ctx, space.JoinCode(), space.ID()); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to write join code")
	}

	owner, err := entities.NewMembership(space.ID(), ownerUserID, entities.RoleOwner, ownerUserID)
	if err != nil {
		return nil, err
	}
	if err := s.memberships.Create(ctx, owner); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create owner membership")
	}

	if s.eventBus != nil {
		event := events.NewMemberJoined(space.ID(), ownerUserID, string(entities.RoleOwner), "space_created", owner.JoinedAt())
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish member joined event", zap.Error(err))
		}
	}

	s.logger.Info("Space created",
		zap.String("spaceID", space.ID().String()),
		zap.String("owner", ownerUserID),
	)

	return space, nil
}

// GetSpace returns a space visible to one of its members
func (s *SpaceService) GetSpace(ctx context.Context, spaceID valueobjects.SpaceID, requestedBy string) (*entities.Space, error) {
	member, err := s.memberships.Get(ctx, spaceID, requestedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check membership")
	}
	if member == nil {
		// Non-members learn nothing, including whether the space exists.
		return nil, pkgerrors.NewSpaceNotFound(spaceID.String())
	}

	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to get space")
	}
	if space == nil {
		return nil, pkgerrors.NewSpaceNotFound(spaceID.String())
	}
	return space, nil
}

// UpdateSpace renames a space. The actor must manage members.
func (s *SpaceService) UpdateSpace(ctx context.Context, spaceID valueobjects.SpaceID, name, description, requestedBy string) (*entities.Space, error) {
	member, err := s.memberships.Get(ctx, spaceID, requestedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check membership")
	}
	if member == nil || !member.Role().CanManageMembers() {
		return nil, pkgerrors.NewForbiddenError("only owners and admins can update the space")
	}

	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to get space")
	}
	if space == nil {
		return nil, pkgerrors.NewSpaceNotFound(spaceID.String())
	}

	if err := space.Rename(name, description); err != nil {
		return nil, err
	}
	if err := s.spaces.Update(ctx, space); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to update space")
	}

	return space, nil
}

// DeleteSpace removes a space and its join-code mapping. Owner only.
func (s *SpaceService) DeleteSpace(ctx context.Context, spaceID valueobjects.SpaceID, requestedBy string) error {
	member, err := s.memberships.Get(ctx, spaceID, requestedBy)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to check membership")
	}
	if member == nil || !member.IsOwner() {
		return pkgerrors.NewForbiddenError("only the owner can delete a space")
	}

	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get space")
	}
	if space == nil {
		return pkgerrors.NewSpaceNotFound(spaceID.String())
	}

	if err := s.spaces.Delete(ctx, spaceID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete space")
	}
	if space.JoinCode() != "" {
		if err := s.spaces.DeleteJoinCode(ctx, space.JoinCode()); err != nil {
			s.logger.Warn("Failed to delete join code for removed space",
				zap.String("spaceID", spaceID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Space deleted",
		zap.String("spaceID", spaceID.String()),
		zap.String("deletedBy", requestedBy),
	)

	return nil
}
