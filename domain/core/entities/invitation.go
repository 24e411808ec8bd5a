package entities

import (
	"time"

	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/domain/events"
	pkgerrors "spaces-backend/pkg/errors"
)

// InvitationStatus represents the state of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
)

// DefaultInvitationTTL is applied when the caller supplies no expiry
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation is a pending offer of space membership sent to an email
// address. Its lifecycle is independent of whether the invitee has an
// account: the recipient is identified by email until acceptance binds the
// invitation to a user ID.
//
// Status transitions are one-way: PENDING -> ACCEPTED or PENDING ->
// DECLINED, never reversed. Expiration is evaluated at read time against
// expiresAt and does not change the stored status.
type Invitation struct {
	id            valueobjects.InvitationID
	spaceID       valueobjects.SpaceID
	inviteeEmail  valueobjects.Email
	inviterUserID string
	status        InvitationStatus
	role          Role

	// Display-only fields; no effect on state transitions.
	message     string
	spaceName   string
	inviterName string

	// code is the alternate lookup key for code-based acceptance.
	// Empty when the invitation was created without one.
	code string

	createdAt   time.Time
	expiresAt   time.Time
	acceptedAt  *time.Time
	acceptedBy  string
	cancelledAt *time.Time
	cancelledBy string

	events []events.DomainEvent
}

// NewInvitationParams holds the inputs for creating an invitation
type NewInvitationParams struct {
	SpaceID       valueobjects.SpaceID
	InviteeEmail  valueobjects.Email
	InviterUserID string
	Role          Role      // defaults to RoleMember
	ExpiresAt     time.Time // zero value applies DefaultInvitationTTL
	WithCode      bool
	Message       string
	SpaceName     string
	InviterName   string
}

// NewInvitation creates a PENDING invitation
func NewInvitation(p NewInvitationParams) (*Invitation, error) {
	if p.SpaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("space ID cannot be empty")
	}
	if p.InviteeEmail.IsZero() {
		return nil, pkgerrors.NewValidationError("invitee email cannot be empty")
	}
	if p.InviterUserID == "" {
		return nil, pkgerrors.NewValidationError("inviter user ID cannot be empty")
	}

	role := p.Role
	if role == "" {
		role = RoleMember
	}
	if !role.Valid() || role == RoleOwner {
		return nil, pkgerrors.NewValidationError("invitation role must be admin, member or viewer")
	}

	now := time.Now().UTC()
	expiresAt := p.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultInvitationTTL)
	}

	inv := &Invitation{
		id:            valueobjects.NewInvitationID(),
		spaceID:       p.SpaceID,
		inviteeEmail:  p.InviteeEmail,
		inviterUserID: p.InviterUserID,
		status:        InvitationPending,
		role:          role,
		message:       p.Message,
		spaceName:     p.SpaceName,
		inviterName:   p.InviterName,
		createdAt:     now,
		expiresAt:     expiresAt,
		events:        []events.DomainEvent{},
	}

	if p.WithCode {
		inv.code = valueobjects.NewInvitationCode()
	}

	inv.addEvent(events.NewInvitationCreated(inv.id, p.SpaceID, p.InviteeEmail.String(), p.InviterUserID, now))

	return inv, nil
}

// ReconstructInvitationParams holds the stored fields of an invitation
type ReconstructInvitationParams struct {
	ID            valueobjects.InvitationID
	SpaceID       valueobjects.SpaceID
	InviteeEmail  valueobjects.Email
	InviterUserID string
	Status        InvitationStatus
	Role          Role
	Message       string
	SpaceName     string
	InviterName   string
	Code          string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	AcceptedAt    *time.Time
	AcceptedBy    string
	CancelledAt   *time.Time
	CancelledBy   string
}

// ReconstructInvitation rebuilds an invitation from repository data with
// preserved timestamps. No events are raised.
func ReconstructInvitation(p ReconstructInvitationParams) (*Invitation, error) {
	if p.ID.IsZero() {
		return nil, pkgerrors.NewValidationError("invitation ID cannot be empty")
	}
	if p.SpaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("space ID cannot be empty")
	}

	role := p.Role
	if role == "" {
		role = RoleMember
	}

	return &Invitation{
		id:            p.ID,
		spaceID:       p.SpaceID,
		inviteeEmail:  p.InviteeEmail,
		inviterUserID: p.InviterUserID,
		status:        p.Status,
		role:          role,
		message:       p.Message,
		spaceName:     p.SpaceName,
		inviterName:   p.InviterName,
		code:          p.Code,
		createdAt:     p.CreatedAt,
		expiresAt:     p.ExpiresAt,
		acceptedAt:    p.AcceptedAt,
		acceptedBy:    p.AcceptedBy,
		cancelledAt:   p.CancelledAt,
		cancelledBy:   p.CancelledBy,
		events:        []events.DomainEvent{},
	}, nil
}

// Getters

func (i *Invitation) ID() valueobjects.InvitationID      { return i.id }
func (i *Invitation) SpaceID() valueobjects.SpaceID      { return i.spaceID }
func (i *Invitation) InviteeEmail() valueobjects.Email   { return i.inviteeEmail }
func (i *Invitation) InviterUserID() string              { return i.inviterUserID }
func (i *Invitation) Status() InvitationStatus           { return i.status }
func (i *Invitation) Role() Role                         { return i.role }
func (i *Invitation) Message() string                    { return i.message }
func (i *Invitation) SpaceName() string                  { return i.spaceName }
func (i *Invitation) InviterName() string                { return i.inviterName }
func (i *Invitation) Code() string                       { return i.code }
func (i *Invitation) HasCode() bool                      { return i.code != "" }
func (i *Invitation) CreatedAt() time.Time               { return i.createdAt }
func (i *Invitation) ExpiresAt() time.Time               { return i.expiresAt }
func (i *Invitation) AcceptedAt() *time.Time             { return i.acceptedAt }
func (i *Invitation) AcceptedBy() string                 { return i.acceptedBy }
func (i *Invitation) CancelledAt() *time.Time            { return i.cancelledAt }
func (i *Invitation) CancelledBy() string                { return i.cancelledBy }

// IsPending reports whether the invitation is still in its initial state
func (i *Invitation) IsPending() bool {
	return i.status == InvitationPending
}

// IsExpired reports whether the invitation's expiry has passed at the given
// instant. Expiration is independent of status: an expired PENDING
// invitation is unusable by every read and accept path.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.expiresAt)
}

// IsUsable reports whether the invitation can still be accepted
func (i *Invitation) IsUsable(now time.Time) bool {
	return i.IsPending() && !i.IsExpired(now)
}

// MatchesInvitee reports whether the given email identifies the recipient
func (i *Invitation) MatchesInvitee(email valueobjects.Email) bool {
	return i.inviteeEmail.Equals(email)
}

// Accept transitions the invitation to ACCEPTED. Expiration is checked
// before status so an expired PENDING invitation reports expiry, and a
// terminal invitation reports the one-way transition violation.
func (i *Invitation) Accept(acceptedBy string, now time.Time) error {
	if acceptedBy == "" {
		return pkgerrors.NewValidationError("accepting user ID cannot be empty")
	}
	if i.IsExpired(now) {
		return pkgerrors.NewInvitationExpired()
	}
	if !i.IsPending() {
		return pkgerrors.NewInvalidInvitation("")
	}

	i.status = InvitationAccepted
	acceptedAt := now
	i.acceptedAt = &acceptedAt
	i.acceptedBy = acceptedBy

	i.addEvent(events.NewInvitationAccepted(i.id, i.spaceID, acceptedBy, string(i.role), now))

	return nil
}

// Cancel transitions the invitation to DECLINED. Only PENDING invitations
// can be cancelled; a second cancel fails rather than double-processing.
func (i *Invitation) Cancel(cancelledBy string, now time.Time) error {
	if !i.IsPending() {
		return pkgerrors.NewInvalidInvitation("can only cancel pending invitations")
	}

	i.status = InvitationDeclined
	cancelledAt := now
	i.cancelledAt = &cancelledAt
	i.cancelledBy = cancelledBy

	i.addEvent(events.NewInvitationCancelled(i.id, i.spaceID, cancelledBy, now))

	return nil
}

// GetUncommittedEvents returns events raised since creation or the last clear
func (i *Invitation) GetUncommittedEvents() []events.DomainEvent {
	return i.events
}

// ClearEvents clears the uncommitted events after they have been published
func (i *Invitation) ClearEvents() {
	i.events = []events.DomainEvent{}
}

func (i *Invitation) addEvent(event events.DomainEvent) {
	i.events = append(i.events, event)
}
