package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"
)

func newTestInvitation(t *testing.T, opts ...func(*NewInvitationParams)) *Invitation {
	t.Helper()

	email, err := valueobjects.NewEmail("alice@example.com")
	require.NoError(t, err)

	params := NewInvitationParams{
		SpaceID:       valueobjects.NewSpaceID(),
		InviteeEmail:  email,
		InviterUserID: "u-bob",
	}
	for _, opt := range opts {
		opt(&params)
	}

	inv, err := NewInvitation(params)
	require.NoError(t, err)
	return inv
}

func TestNewInvitation_Defaults(t *testing.T) {
	inv := newTestInvitation(t)

	assert.Equal(t, InvitationPending, inv.Status())
	assert.Equal(t, RoleMember, inv.Role())
	assert.False(t, inv.HasCode())
	assert.False(t, inv.ID().IsZero())

	// Default expiry lands seven days out, with tolerance for clock skew.
	ttl := inv.ExpiresAt().Sub(inv.CreatedAt())
	assert.InDelta(t, float64(7*24*time.Hour), float64(ttl), float64(2*time.Hour))
}

func TestNewInvitation_WithCode(t *testing.T) {
	inv := newTestInvitation(t, func(p *NewInvitationParams) { p.WithCode = true })

	assert.True(t, inv.HasCode())
	assert.NotEmpty(t, inv.Code())
}

func TestNewInvitation_ExplicitExpiry(t *testing.T) {
	expiresAt := time.Now().UTC().Add(48 * time.Hour)
	inv := newTestInvitation(t, func(p *NewInvitationParams) { p.ExpiresAt = expiresAt })

	assert.Equal(t, expiresAt, inv.ExpiresAt())
}

func TestNewInvitation_RejectsOwnerRole(t *testing.T) {
	email, err := valueobjects.NewEmail("alice@example.com")
	require.NoError(t, err)

	_, err = NewInvitation(NewInvitationParams{
		SpaceID:       valueobjects.NewSpaceID(),
		InviteeEmail:  email,
		InviterUserID: "u-bob",
		Role:          RoleOwner,
	})
	assert.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestInvitation_Accept(t *testing.T) {
	inv := newTestInvitation(t)
	now := time.Now().UTC()

	err := inv.Accept("u-alice", now)
	require.NoError(t, err)

	assert.Equal(t, InvitationAccepted, inv.Status())
	assert.Equal(t, "u-alice", inv.AcceptedBy())
	require.NotNil(t, inv.AcceptedAt())
	assert.Equal(t, now, *inv.AcceptedAt())
}

func TestInvitation_Accept_Expired(t *testing.T) {
	inv := newTestInvitation(t, func(p *NewInvitationParams) {
		p.ExpiresAt = time.Now().UTC().Add(-24 * time.Hour)
	})

	err := inv.Accept("u-alice", time.Now().UTC())
	assert.True(t, pkgerrors.IsInvitationExpired(err))

	// Failed validation leaves the invitation untouched.
	assert.Equal(t, InvitationPending, inv.Status())
	assert.Nil(t, inv.AcceptedAt())
}

func TestInvitation_Accept_TerminalStates(t *testing.T) {
	now := time.Now().UTC()

	accepted := newTestInvitation(t)
	require.NoError(t, accepted.Accept("u-alice", now))
	err := accepted.Accept("u-carol", now)
	assert.True(t, pkgerrors.IsInvalidInvitation(err))
	assert.Equal(t, "u-alice", accepted.AcceptedBy())

	declined := newTestInvitation(t)
	require.NoError(t, declined.Cancel("u-bob", now))
	err = declined.Accept("u-alice", now)
	assert.True(t, pkgerrors.IsInvalidInvitation(err))
	assert.Equal(t, InvitationDeclined, declined.Status())
}

func TestInvitation_Cancel(t *testing.T) {
	inv := newTestInvitation(t)
	now := time.Now().UTC()

	err := inv.Cancel("u-bob", now)
	require.NoError(t, err)

	assert.Equal(t, InvitationDeclined, inv.Status())
	assert.Equal(t, "u-bob", inv.CancelledBy())
	require.NotNil(t, inv.CancelledAt())

	// Second cancel fails cleanly rather than double-processing.
	err = inv.Cancel("u-bob", now)
	assert.True(t, pkgerrors.IsInvalidInvitation(err))
}

func TestInvitation_IsUsable(t *testing.T) {
	now := time.Now().UTC()

	pending := newTestInvitation(t)
	assert.True(t, pending.IsUsable(now))

	expired := newTestInvitation(t, func(p *NewInvitationParams) {
		p.ExpiresAt = now.Add(-time.Minute)
	})
	assert.True(t, expired.IsPending())
	assert.False(t, expired.IsUsable(now))

	accepted := newTestInvitation(t)
	require.NoError(t, accepted.Accept("u-alice", now))
	assert.False(t, accepted.IsUsable(now))
}

func TestInvitation_MatchesInvitee(t *testing.T) {
	inv := newTestInvitation(t)

	match, err := valueobjects.NewEmail("Alice@Example.com")
	require.NoError(t, err)
	assert.True(t, inv.MatchesInvitee(match))

	other, err := valueobjects.NewEmail("carol@example.com")
	require.NoError(t, err)
	assert.False(t, inv.MatchesInvitee(other))
}

func TestInvitation_Events(t *testing.T) {
	inv := newTestInvitation(t)
	events := inv.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "invitation.created", events[0].GetEventType())

	inv.ClearEvents()
	require.NoError(t, inv.Accept("u-alice", time.Now().UTC()))
	events = inv.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "invitation.accepted", events[0].GetEventType())
}

func TestReconstructInvitation_PreservesState(t *testing.T) {
	original := newTestInvitation(t, func(p *NewInvitationParams) { p.WithCode = true })
	require.NoError(t, original.Accept("u-alice", time.Now().UTC()))

	rebuilt, err := ReconstructInvitation(ReconstructInvitationParams{
		ID:            original.ID(),
		SpaceID:       original.SpaceID(),
		InviteeEmail:  original.InviteeEmail(),
		InviterUserID: original.InviterUserID(),
		Status:        original.Status(),
		Role:          original.Role(),
		Code:          original.Code(),
		CreatedAt:     original.CreatedAt(),
		ExpiresAt:     original.ExpiresAt(),
		AcceptedAt:    original.AcceptedAt(),
		AcceptedBy:    original.AcceptedBy(),
	})
	require.NoError(t, err)

	assert.Equal(t, original.ID(), rebuilt.ID())
	assert.Equal(t, InvitationAccepted, rebuilt.Status())
	assert.Equal(t, original.Code(), rebuilt.Code())
	assert.Empty(t, rebuilt.GetUncommittedEvents())
}
