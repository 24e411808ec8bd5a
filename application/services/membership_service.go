package services

import (
	"context"
	"time"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/domain/events"
	pkgerrors "spaces-backend/pkg/errors"

	"go.uber.org/zap"
)

// MembershipService owns membership rows: uniqueness of (space, user),
// role-based permission checks, the invite-code join path, and join-code
// rotation. The invitation engine calls into it to materialize memberships
// but never owns them itself.
type MembershipService struct {
	memberships ports.MembershipRepository
	spaces      ports.SpaceRepository
	eventBus    ports.EventBus
	logger      *zap.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	memberships ports.MembershipRepository,
	spaces ports.SpaceRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		spaces:      spaces,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// RedemptionResult confirms a successful invite-code join
type RedemptionResult struct {
	SpaceID   valueobjects.SpaceID
	SpaceName string
	Role      entities.Role
	JoinedAt  time.Time
}

// AddMember creates a membership row for userID in spaceID.
//
// When addedBy differs from userID the caller is acting on someone else's
// behalf and must hold a member-managing role in the space. When they are
// equal the user is adding themself — the path taken by invitation
// acceptance — and the edit-rights check is skipped.
//
// Owner rows are never minted here; they exist only from space creation.
func (s *MembershipService) AddMember(ctx context.Context, spaceID valueobjects.SpaceID, userID string, role entities.Role, addedBy string) error {
	if role == entities.RoleOwner {
		return pkgerrors.NewValidationError("owner role is assigned at space creation only")
	}

	if addedBy != userID {
		actor, err := s.memberships.Get(ctx, spaceID, addedBy)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to check actor membership")
		}
		if actor == nil || !actor.Role().CanManageMembers() {
			return pkgerrors.NewForbiddenError("only owners and admins can add members")
		}
	}

	membership, err := entities.NewMembership(spaceID, userID, role, addedBy)
	if err != nil {
		return err
	}

	// The repository enforces (space, user) uniqueness with a conditional
	// write and reports a duplicate as AlreadyMember.
	if err := s.memberships.Create(ctx, membership); err != nil {
		return err
	}

	via := "admin_add"
	if addedBy == userID {
		via = "self_join"
	}
	s.publish(ctx, events.NewMemberJoined(spaceID, userID, string(role), via, membership.JoinedAt()))

	s.logger.Info("Member added to space",
		zap.String("spaceID", spaceID.String()),
		zap.String("userID", userID),
		zap.String("role", string(role)),
		zap.String("addedBy", addedBy),
	)

	return nil
}

// RemoveMember deletes a membership row. The owner row can never be removed
// through this path; the actor must manage members or be removing themself.
func (s *MembershipService) RemoveMember(ctx context.Context, spaceID valueobjects.SpaceID, userID, removedBy string) error {
	target, err := s.memberships.Get(ctx, spaceID, userID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get membership")
	}
	if target == nil {
		return pkgerrors.NewMemberNotFound(spaceID.String(), userID)
	}
	if target.IsOwner() {
		return pkgerrors.NewForbiddenError("the space owner cannot be removed")
	}

	if removedBy != userID {
		actor, err := s.memberships.Get(ctx, spaceID, removedBy)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to check actor membership")
		}
		if actor == nil || !actor.Role().CanManageMembers() {
			return pkgerrors.NewForbiddenError("only owners and admins can remove members")
		}
	}

	if err := s.memberships.Delete(ctx, spaceID, userID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete membership")
	}

	s.publish(ctx, events.NewMemberRemoved(spaceID, userID, removedBy, time.Now().UTC()))

	s.logger.Info("Member removed from space",
		zap.String("spaceID", spaceID.String()),
		zap.String("userID", userID),
		zap.String("removedBy", removedBy),
	)

	return nil
}

// GetMember returns a user's membership in a space; nil when not a member
func (s *MembershipService) GetMember(ctx context.Context, spaceID valueobjects.SpaceID, userID string) (*entities.Membership, error) {
	return s.memberships.Get(ctx, spaceID, userID)
}

// ListMembers returns all members of a space. The caller must be a member.
func (s *MembershipService) ListMembers(ctx context.Context, spaceID valueobjects.SpaceID, requestedBy string) ([]*entities.Membership, error) {
	actor, err := s.memberships.Get(ctx, spaceID, requestedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check membership")
	}
	if actor == nil {
		return nil, pkgerrors.NewForbiddenError("only members can list a space's members")
	}
	return s.memberships.ListBySpace(ctx, spaceID)
}

// ListSpacesForUser returns every membership a user holds
func (s *MembershipService) ListSpacesForUser(ctx context.Context, userID string) ([]*entities.Membership, error) {
	return s.memberships.ListByUser(ctx, userID)
}

// RedeemInviteCode joins userID to the space behind a join code with role
// member.
//
// Failure policy: a user presenting a join code has proven nothing yet, so
// every resolution failure — unknown code, dangling mapping, storage error —
// collapses into InvalidInviteCode. The one distinct error is AlreadyMember,
// which implies the caller already knows the space.
func (s *MembershipService) RedeemInviteCode(ctx context.Context, code, userID string) (*RedemptionResult, error) {
	normalized, err := valueobjects.NormalizeJoinCode(code)
	if err != nil {
		return nil, pkgerrors.NewInvalidInviteCode()
	}

	spaceID, err := s.spaces.GetSpaceIDByJoinCode(ctx, normalized)
	if err != nil {
		s.logger.Warn("Join code lookup failed", zap.Error(err))
		return nil, pkgerrors.NewInvalidInviteCode()
	}
	if spaceID.IsZero() {
		return nil, pkgerrors.NewInvalidInviteCode()
	}

	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil || space == nil {
		s.logger.Warn("Join code points at missing space",
			zap.String("spaceID", spaceID.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewInvalidInviteCode()
	}

	existing, err := s.memberships.Get(ctx, spaceID, userID)
	if err != nil {
		s.logger.Warn("Membership lookup failed during redemption", zap.Error(err))
		return nil, pkgerrors.NewInvalidInviteCode()
	}
	if existing != nil {
		return nil, pkgerrors.NewAlreadyMember(spaceID.String(), userID)
	}

	membership, err := entities.NewMembership(spaceID, userID, entities.RoleMember, userID)
	if err != nil {
		return nil, pkgerrors.NewInvalidInviteCode()
	}

	if err := s.memberships.Create(ctx, membership); err != nil {
		if pkgerrors.IsAlreadyMember(err) {
			// Lost the race against a concurrent join by the same user.
			return nil, err
		}
		s.logger.Error("Failed to create membership during redemption", zap.Error(err))
		return nil, pkgerrors.NewInvalidInviteCode()
	}

	s.publish(ctx, events.NewMemberJoined(spaceID, userID, string(entities.RoleMember), "join_code", membership.JoinedAt()))

	s.logger.Info("Invite code redeemed",
		zap.String("spaceID", spaceID.String()),
		zap.String("userID", userID),
	)

	return &RedemptionResult{
		SpaceID:   spaceID,
		SpaceName: space.Name(),
		Role:      entities.RoleMember,
		JoinedAt:  membership.JoinedAt(),
	}, nil
}

// RegenerateInviteCode rotates a space's join code. The new mapping is
// written before the old one is removed; failing to delete the old mapping
// is swallowed since a stale code still points at the same space.
func (s *MembershipService) RegenerateInviteCode(ctx context.Context, spaceID valueobjects.SpaceID, requestedBy string) (string, error) {
	actor, err := s.memberships.Get(ctx, spaceID, requestedBy)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to check actor membership")
	}
	if actor == nil || !actor.Role().CanManageMembers() {
		return "", pkgerrors.NewForbiddenError("only owners and admins can regenerate the invite code")
	}

	space, err := s.spaces.GetByID(ctx, spaceID)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to get space")
	}
	if space == nil {
		return "", pkgerrors.NewSpaceNotFound(spaceID.String())
	}

	oldCode := space.JoinCode()
	newCode := space.RotateJoinCode()

	if err := s.spaces.PutJoinCode(ctx, newCode, spaceID); err != nil {
		return "", pkgerrors.Wrap(err, "failed to write new join code")
	}
	if err := s.spaces.Update(ctx, space); err != nil {
		return "", pkgerrors.Wrap(err, "failed to update space")
	}

	if oldCode != "" {
		if err := s.spaces.DeleteJoinCode(ctx, oldCode); err != nil {
			s.logger.Warn("Failed to delete previous join code mapping",
				zap.String("spaceID", spaceID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Invite code regenerated",
		zap.String("spaceID", spaceID.String()),
		zap.String("requestedBy", requestedBy),
	)

	return newCode, nil
}

func (s *MembershipService) publish(ctx context.Context, event events.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
