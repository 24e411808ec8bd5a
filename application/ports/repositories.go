package ports

import (
	"context"

	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/domain/events"
)

// InvitationRepository defines the interface for invitation persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type InvitationRepository interface {
	// Create persists a new invitation. It must fail with an
	// InvitationAlreadyExists error when a PENDING invitation for the same
	// (space, invitee email) pair exists; implementations express this as a
	// conditional write, not a read-then-write.
	Create(ctx context.Context, invitation *entities.Invitation) error

	// GetByID retrieves an invitation by its ID; nil when absent
	GetByID(ctx context.Context, id valueobjects.InvitationID) (*entities.Invitation, error)

	// GetByCode retrieves an invitation by its invitation code; nil when absent
	GetByCode(ctx context.Context, code string) (*entities.Invitation, error)

	// GetByInvitee retrieves all invitations addressed to an email, any
	// status, via the invitee index (or the degraded scan fallback)
	GetByInvitee(ctx context.Context, email valueobjects.Email) ([]*entities.Invitation, error)

	// GetBySpace retrieves the invitations still targeting a space.
	// Implementations may omit resolved invitations; callers filter to
	// usable ones regardless.
	GetBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Invitation, error)

	// ListAll retrieves every invitation (admin use only)
	ListAll(ctx context.Context) ([]*entities.Invitation, error)

	// UpdateStatus persists a status transition. Implementations release
	// the pending-uniqueness guard when the invitation leaves PENDING so a
	// fresh invitation for the same (space, email) can be created.
	UpdateStatus(ctx context.Context, invitation *entities.Invitation) error
}

// MembershipRepository defines the interface for membership persistence
type MembershipRepository interface {
	// Create persists a membership row. It must fail with an AlreadyMember
	// error when (spaceID, userID) already exists, via a conditional write.
	Create(ctx context.Context, membership *entities.Membership) error

	// Get retrieves a membership; nil when the user is not a member
	Get(ctx context.Context, spaceID valueobjects.SpaceID, userID string) (*entities.Membership, error)

	// ListBySpace retrieves all members of a space
	ListBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Membership, error)

	// ListByUser retrieves all memberships a user holds
	ListByUser(ctx context.Context, userID string) ([]*entities.Membership, error)

	// Delete removes a membership row
	Delete(ctx context.Context, spaceID valueobjects.SpaceID, userID string) error
}

// SpaceRepository defines the interface for space persistence
type SpaceRepository interface {
	// Create persists a new space
	Create(ctx context.Context, space *entities.Space) error

	// GetByID retrieves a space by its ID; nil when absent
	GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error)

	// Update persists changes to a space's mutable fields
	Update(ctx context.Context, space *entities.Space) error

	// Delete removes a space
	Delete(ctx context.Context, id valueobjects.SpaceID) error

	// GetSpaceIDByJoinCode resolves a join code to its space; empty when
	// the mapping is absent
	GetSpaceIDByJoinCode(ctx context.Context, code string) (valueobjects.SpaceID, error)

	// PutJoinCode writes the join-code -> space mapping
	PutJoinCode(ctx context.Context, code string, spaceID valueobjects.SpaceID) error

	// DeleteJoinCode removes a join-code mapping. Best-effort during code
	// rotation: a stale mapping to the same space is a cleanup miss, not a
	// correctness problem.
	DeleteJoinCode(ctx context.Context, code string) error
}

// JournalRepository defines the interface for journal entry persistence
type JournalRepository interface {
	// Create persists a journal entry
	Create(ctx context.Context, entry *entities.JournalEntry) error

	// GetByID retrieves one entry; nil when absent
	GetByID(ctx context.Context, spaceID valueobjects.SpaceID, entryID string) (*entities.JournalEntry, error)

	// ListBySpace retrieves a space's entries, newest first
	ListBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.JournalEntry, error)

	// Delete removes an entry
	Delete(ctx context.Context, spaceID valueobjects.SpaceID, entryID string) error
}

// ConnectionRepository tracks live WebSocket connections for presence
type ConnectionRepository interface {
	// Save records a connection for a user
	Save(ctx context.Context, connectionID, userID string) error

	// Delete removes a connection record
	Delete(ctx context.Context, connectionID string) error

	// GetByUserID retrieves the connection IDs of a user's live sockets
	GetByUserID(ctx context.Context, userID string) ([]string, error)
}

// EventBus publishes domain events to downstream consumers
type EventBus interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// Directory is the optional user/space existence collaborator consulted
// before accepting an invitation. When absent, the service relies on the
// downstream membership write to surface an invalid space.
type Directory interface {
	// GetUserByEmail returns the user ID for an email; empty when no
	// account exists
	GetUserByEmail(ctx context.Context, email valueobjects.Email) (string, error)

	// SpaceExists reports whether a space exists
	SpaceExists(ctx context.Context, spaceID valueobjects.SpaceID) (bool, error)
}
