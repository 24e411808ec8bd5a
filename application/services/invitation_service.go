package services

import (
	"context"
	"time"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"
	"spaces-backend/pkg/observability"

	"go.uber.org/zap"
)

// InvitationService owns the invitation lifecycle end to end: creation with
// duplicate prevention, acceptance by id or code, cancellation, and the
// expiration policy. It calls into MembershipService to materialize
// membership rows but never owns them.
//
// Expiration is evaluated wherever an invitation is read, never stored:
// there is no background sweep, and an expired PENDING invitation is
// invisible to listings and unusable by accept.
type InvitationService struct {
	invitations ports.InvitationRepository
	memberships *MembershipService
	eventBus    ports.EventBus

	// directory is optional. When present, acceptance fails fast with
	// UserNotFound/SpaceNotFound before touching membership; when nil the
	// membership write surfaces an invalid space on its own.
	directory ports.Directory

	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewInvitationService creates a new invitation service. directory and
// metrics may be nil.
func NewInvitationService(
	invitations ports.InvitationRepository,
	memberships *MembershipService,
	eventBus ports.EventBus,
	directory ports.Directory,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		memberships: memberships,
		eventBus:    eventBus,
		directory:   directory,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateInvitationInput holds the inputs for creating an invitation
type CreateInvitationInput struct {
	SpaceID       string
	InviteeEmail  string
	InviterUserID string
	Role          string     // defaults to member
	ExpiresAt     *time.Time // nil applies the seven-day default
	WithCode      bool       // also mint a code for code-based acceptance
	Message       string
	SpaceName     string
	InviterName   string
}

// Create persists a new PENDING invitation.
//
// At most one PENDING invitation may exist per (space, invitee email); the
// repository enforces this with a conditional write and a duplicate fails
// with InvitationAlreadyExists rather than overwriting.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (inv *entities.Invitation, err error) {
	defer s.record(ctx, "invitation.create", s.now(), &err)

	spaceID, err := valueobjects.NewSpaceIDFromString(input.SpaceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	email, err := valueobjects.NewEmail(input.InviteeEmail)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	var expiresAt time.Time
	if input.ExpiresAt != nil {
		expiresAt = input.ExpiresAt.UTC()
	}

	inv, err = entities.NewInvitation(entities.NewInvitationParams{
		SpaceID:       spaceID,
		InviteeEmail:  email,
		InviterUserID: input.InviterUserID,
		Role:          entities.Role(input.Role),
		ExpiresAt:     expiresAt,
		WithCode:      input.WithCode,
		Message:       input.Message,
		SpaceName:     input.SpaceName,
		InviterName:   input.InviterName,
	})
	if err != nil {
		return nil, err
	}

	if err = s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inv)

	s.logger.Info("Invitation created",
		zap.String("invitationID", inv.ID().String()),
		zap.String("spaceID", spaceID.String()),
		zap.String("invitee", email.String()),
		zap.Bool("withCode", input.WithCode),
	)

	return inv, nil
}

// AcceptIdentifier selects the lookup strategy for Accept. Exactly one of
// ID or Code must be set; the two strategies share the same validation but
// are never combined in a single call.
type AcceptIdentifier struct {
	ID   string
	Code string
}

// ByID builds an id-based accept identifier
func ByID(id string) AcceptIdentifier { return AcceptIdentifier{ID: id} }

// ByCode builds a code-based accept identifier
func ByCode(code string) AcceptIdentifier { return AcceptIdentifier{Code: code} }

// AcceptInvitationInput holds the inputs for accepting an invitation
type AcceptInvitationInput struct {
	Identifier      AcceptIdentifier
	AcceptingUserID string

	// ExpectedInviteeEmail, when set, must match the invitation's invitee.
	// A mismatch is reported as not-found so callers cannot probe whether
	// an invitation exists for someone else.
	ExpectedInviteeEmail string
}

// Accept validates and accepts an invitation, materializing the membership
// row before flipping the invitation status.
//
// Validation order, first failure wins: existence, invitee identity,
// expiration, pending status. Validation failures leave the invitation
// untouched.
//
// The membership write comes first so a crash between the two writes
// leaves a re-acceptable invitation instead of a silently dropped member;
// on re-accept the existing membership is treated as idempotent completion.
func (s *InvitationService) Accept(ctx context.Context, input AcceptInvitationInput) (inv *entities.Invitation, err error) {
	defer s.record(ctx, "invitation.accept", s.now(), &err)

	if input.AcceptingUserID == "" {
		return nil, pkgerrors.NewValidationError("accepting user ID cannot be empty")
	}

	inv, err = s.lookup(ctx, input.Identifier)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, pkgerrors.NewInvitationNotFound()
	}

	if input.ExpectedInviteeEmail != "" {
		expected, emailErr := valueobjects.NewEmail(input.ExpectedInviteeEmail)
		if emailErr != nil || !inv.MatchesInvitee(expected) {
			return nil, pkgerrors.NewInvitationNotFound()
		}
	}

	now := s.now()
	if inv.IsExpired(now) {
		return nil, pkgerrors.NewInvitationExpired()
	}
	if !inv.IsPending() {
		return nil, pkgerrors.NewInvalidInvitation("")
	}

	if err = s.checkExistence(ctx, inv); err != nil {
		return nil, err
	}

	// Membership first. The invitee adds themself, so AddMember skips the
	// edit-rights check; an existing row means a previous accept attempt
	// got this far and is absorbed rather than failing the retry.
	err = s.memberships.AddMember(ctx, inv.SpaceID(), input.AcceptingUserID, inv.Role(), input.AcceptingUserID)
	if err != nil {
		if !pkgerrors.IsAlreadyMember(err) {
			return nil, err
		}
		s.logger.Info("Membership already present during accept, completing invitation",
			zap.String("invitationID", inv.ID().String()),
			zap.String("userID", input.AcceptingUserID),
		)
	}

	if err = inv.Accept(input.AcceptingUserID, now); err != nil {
		return nil, err
	}
	if err = s.invitations.UpdateStatus(ctx, inv); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to mark invitation accepted")
	}

	s.publishEvents(ctx, inv)

	s.logger.Info("Invitation accepted",
		zap.String("invitationID", inv.ID().String()),
		zap.String("spaceID", inv.SpaceID().String()),
		zap.String("acceptedBy", input.AcceptingUserID),
	)

	return inv, nil
}

// Cancel transitions a PENDING invitation to DECLINED. Cancelling an
// invitation that already left PENDING fails with InvalidInvitation.
func (s *InvitationService) Cancel(ctx context.Context, invitationID, cancelledBy string) (err error) {
	defer s.record(ctx, "invitation.cancel", s.now(), &err)

	id, err := valueobjects.NewInvitationIDFromString(invitationID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get invitation")
	}
	if inv == nil {
		return pkgerrors.NewInvitationNotFound()
	}

	if err = inv.Cancel(cancelledBy, s.now()); err != nil {
		return err
	}
	if err = s.invitations.UpdateStatus(ctx, inv); err != nil {
		return pkgerrors.Wrap(err, "failed to mark invitation declined")
	}

	s.publishEvents(ctx, inv)

	s.logger.Info("Invitation cancelled",
		zap.String("invitationID", inv.ID().String()),
		zap.String("cancelledBy", cancelledBy),
	)

	return nil
}

// ValidateCode reports whether a code identifies a usable invitation:
// existing, PENDING, and not expired. Pure read, no side effects.
func (s *InvitationService) ValidateCode(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	inv, err := s.invitations.GetByCode(ctx, code)
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to look up invitation code")
	}
	if inv == nil {
		return false, nil
	}

	return inv.IsUsable(s.now()), nil
}

// GetPendingForUser returns all usable invitations addressed to an email.
// Expired PENDING invitations are filtered here, at read time.
func (s *InvitationService) GetPendingForUser(ctx context.Context, inviteeEmail string) ([]*entities.Invitation, error) {
	email, err := valueobjects.NewEmail(inviteeEmail)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	invitations, err := s.invitations.GetByInvitee(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query invitations by invitee")
	}

	return s.filterUsable(invitations), nil
}

// GetPendingForSpace returns all usable invitations targeting a space.
// The caller must be a member; invitee emails stay inside the space.
func (s *InvitationService) GetPendingForSpace(ctx context.Context, spaceID, requestedBy string) ([]*entities.Invitation, error) {
	id, err := valueobjects.NewSpaceIDFromString(spaceID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	actor, err := s.memberships.GetMember(ctx, id, requestedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check membership")
	}
	if actor == nil {
		return nil, pkgerrors.NewForbiddenError("only members can list a space's invitations")
	}

	invitations, err := s.invitations.GetBySpace(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query invitations by space")
	}

	return s.filterUsable(invitations), nil
}

// ListAll returns every usable pending invitation. Admin-only; the HTTP
// layer gates access.
func (s *InvitationService) ListAll(ctx context.Context) ([]*entities.Invitation, error) {
	invitations, err := s.invitations.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list invitations")
	}
	return s.filterUsable(invitations), nil
}

// lookup resolves the accept identifier to an invitation, nil when absent
func (s *InvitationService) lookup(ctx context.Context, identifier AcceptIdentifier) (*entities.Invitation, error) {
	switch {
	case identifier.ID != "" && identifier.Code != "":
		return nil, pkgerrors.NewValidationError("identifier must be an invitation id or a code, not both")
	case identifier.ID != "":
		id, err := valueobjects.NewInvitationIDFromString(identifier.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		inv, err := s.invitations.GetByID(ctx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to get invitation")
		}
		return inv, nil
	case identifier.Code != "":
		inv, err := s.invitations.GetByCode(ctx, identifier.Code)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to get invitation by code")
		}
		return inv, nil
	default:
		return nil, pkgerrors.NewValidationError("identifier is required")
	}
}

// checkExistence runs the optional fail-fast directory checks
func (s *InvitationService) checkExistence(ctx context.Context, inv *entities.Invitation) error {
	if s.directory == nil {
		return nil
	}

	userID, err := s.directory.GetUserByEmail(ctx, inv.InviteeEmail())
	if err != nil {
		return pkgerrors.Wrap(err, "failed to look up invitee")
	}
	if userID == "" {
		return pkgerrors.NewUserNotFound(inv.InviteeEmail().String())
	}

	exists, err := s.directory.SpaceExists(ctx, inv.SpaceID())
	if err != nil {
		return pkgerrors.Wrap(err, "failed to look up space")
	}
	if !exists {
		return pkgerrors.NewSpaceNotFound(inv.SpaceID().String())
	}

	return nil
}

func (s *InvitationService) filterUsable(invitations []*entities.Invitation) []*entities.Invitation {
	now := s.now()
	usable := make([]*entities.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if inv.IsUsable(now) {
			usable = append(usable, inv)
		}
	}
	return usable
}

func (s *InvitationService) publishEvents(ctx context.Context, inv *entities.Invitation) {
	if s.eventBus == nil {
		return
	}
	pending := inv.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := s.eventBus.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("Failed to publish invitation events",
			zap.String("invitationID", inv.ID().String()),
			zap.Error(err),
		)
		return
	}
	inv.ClearEvents()
}

func (s *InvitationService) record(ctx context.Context, operation string, start time.Time, err *error) {
	s.metrics.RecordOperation(ctx, operation, s.now().Sub(start), *err)
}
