package events

import (
	"time"

	"spaces-backend/domain/core/valueobjects"
)

// InvitationCreated is raised when a new invitation is persisted
type InvitationCreated struct {
	BaseEvent
	InvitationID  valueobjects.InvitationID `json:"invitation_id"`
	SpaceID       valueobjects.SpaceID      `json:"space_id"`
	InviteeEmail  string                    `json:"invitee_email"`
	InviterUserID string                    `json:"inviter_user_id"`
}

// NewInvitationCreated creates an InvitationCreated event
func NewInvitationCreated(invitationID valueobjects.InvitationID, spaceID valueobjects.SpaceID, inviteeEmail, inviterUserID string, timestamp time.Time) InvitationCreated {
	return InvitationCreated{
		BaseEvent: BaseEvent{
			AggregateID: invitationID.String(),
			EventType:   "invitation.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		InvitationID:  invitationID,
		SpaceID:       spaceID,
		InviteeEmail:  inviteeEmail,
		InviterUserID: inviterUserID,
	}
}

// InvitationAccepted is raised when an invitation transitions to ACCEPTED
type InvitationAccepted struct {
	BaseEvent
	InvitationID valueobjects.InvitationID `json:"invitation_id"`
	SpaceID      valueobjects.SpaceID      `json:"space_id"`
	AcceptedBy   string                    `json:"accepted_by"`
	Role         string                    `json:"role"`
}

// NewInvitationAccepted creates an InvitationAccepted event
func NewInvitationAccepted(invitationID valueobjects.InvitationID, spaceID valueobjects.SpaceID, acceptedBy, role string, timestamp time.Time) InvitationAccepted {
	return InvitationAccepted{
		BaseEvent: BaseEvent{
			AggregateID: invitationID.String(),
			EventType:   "invitation.accepted",
			Timestamp:   timestamp,
			Version:     1,
		},
		InvitationID: invitationID,
		SpaceID:      spaceID,
		AcceptedBy:   acceptedBy,
		Role:         role,
	}
}

// InvitationCancelled is raised when an invitation transitions to DECLINED
type InvitationCancelled struct {
	BaseEvent
	InvitationID valueobjects.InvitationID `json:"invitation_id"`
	SpaceID      valueobjects.SpaceID      `json:"space_id"`
	CancelledBy  string                    `json:"cancelled_by"`
}

// NewInvitationCancelled creates an InvitationCancelled event
func NewInvitationCancelled(invitationID valueobjects.InvitationID, spaceID valueobjects.SpaceID, cancelledBy string, timestamp time.Time) InvitationCancelled {
	return InvitationCancelled{
		BaseEvent: BaseEvent{
			AggregateID: invitationID.String(),
			EventType:   "invitation.cancelled",
			Timestamp:   timestamp,
			Version:     1,
		},
		InvitationID: invitationID,
		SpaceID:      spaceID,
		CancelledBy:  cancelledBy,
	}
}
