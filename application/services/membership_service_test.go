package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"
)

type membershipFixture struct {
	svc         *MembershipService
	memberships *fakeMembershipRepo
	spaces      *fakeSpaceRepo
	bus         *stubEventBus
	space       *entities.Space
}

// newMembershipFixture seeds a space owned by "user-owner" with its join
// code mapping in place, the state CreateSpace leaves behind.
func newMembershipFixture(t *testing.T) *membershipFixture {
	t.Helper()
	ctx := context.Background()

	memberships := newFakeMembershipRepo()
	spaces := newFakeSpaceRepo()
	bus := &stubEventBus{}
	svc := NewMembershipService(memberships, spaces, bus, zap.NewNop())

	space, err := entities.NewSpace("Team Space", "", "user-owner")
	require.NoError(t, err)
	require.NoError(t, spaces.Create(ctx, space))
	require.NoError(t, spaces.PutJoinCode(ctx, space.JoinCode(), space.ID()))

	owner, err := entities.NewMembership(space.ID(), "user-owner", entities.RoleOwner, "user-owner")
	require.NoError(t, err)
	require.NoError(t, memberships.Create(ctx, owner))

	return &membershipFixture{
		svc:         svc,
		memberships: memberships,
		spaces:      spaces,
		bus:         bus,
		space:       space,
	}
}

func (f *membershipFixture) addMember(t *testing.T, userID string, role entities.Role) {
	t.Helper()
	require.NoError(t, f.svc.AddMember(context.Background(), f.space.ID(), userID, role, "user-owner"))
}

func TestMembershipService_AddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("owner adds member", func(t *testing.T) {
		f := newMembershipFixture(t)

		err := f.svc.AddMember(ctx, f.space.ID(), "user-new", entities.RoleMember, "user-owner")
		require.NoError(t, err)

		m, err := f.memberships.Get(ctx, f.space.ID(), "user-new")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, entities.RoleMember, m.Role())
		assert.Equal(t, "user-owner", m.AddedBy())
		assert.Contains(t, f.bus.eventTypes(), "space.member_joined")
	})

	t.Run("admin adds member", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-admin", entities.RoleAdmin)

		err := f.svc.AddMember(ctx, f.space.ID(), "user-new", entities.RoleMember, "user-admin")
		assert.NoError(t, err)
	})

	t.Run("plain member cannot add", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-member", entities.RoleMember)

		err := f.svc.AddMember(ctx, f.space.ID(), "user-new", entities.RoleMember, "user-member")
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("non-member cannot add", func(t *testing.T) {
		f := newMembershipFixture(t)

		err := f.svc.AddMember(ctx, f.space.ID(), "user-new", entities.RoleMember, "user-stranger")
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("self-join skips rights check", func(t *testing.T) {
		f := newMembershipFixture(t)

		err := f.svc.AddMember(ctx, f.space.ID(), "user-self", entities.RoleMember, "user-self")
		assert.NoError(t, err)
	})

	t.Run("owner role is never assignable", func(t *testing.T) {
		f := newMembershipFixture(t)

		err := f.svc.AddMember(ctx, f.space.ID(), "user-new", entities.RoleOwner, "user-owner")
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("duplicate is rejected", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-new", entities.RoleMember)

		err := f.svc.AddMember(ctx, f.space.ID(), "user-new", entities.RoleMember, "user-owner")
		assert.True(t, pkgerrors.IsAlreadyMember(err))
	})
}

func TestMembershipService_RemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("owner removes member", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-target", entities.RoleMember)

		require.NoError(t, f.svc.RemoveMember(ctx, f.space.ID(), "user-target", "user-owner"))

		m, err := f.memberships.Get(ctx, f.space.ID(), "user-target")
		require.NoError(t, err)
		assert.Nil(t, m)
		assert.Contains(t, f.bus.eventTypes(), "space.member_removed")
	})

	t.Run("member leaves on their own", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-target", entities.RoleMember)

		assert.NoError(t, f.svc.RemoveMember(ctx, f.space.ID(), "user-target", "user-target"))
	})

	t.Run("owner row is never removable", func(t *testing.T) {
		f := newMembershipFixture(t)

		err := f.svc.RemoveMember(ctx, f.space.ID(), "user-owner", "user-owner")
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("plain member cannot remove others", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-member", entities.RoleMember)
		f.addMember(t, "user-target", entities.RoleMember)

		err := f.svc.RemoveMember(ctx, f.space.ID(), "user-target", "user-member")
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("unknown member", func(t *testing.T) {
		f := newMembershipFixture(t)

		err := f.svc.RemoveMember(ctx, f.space.ID(), "user-ghost", "user-owner")
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestMembershipService_ListMembers(t *testing.T) {
	f := newMembershipFixture(t)
	ctx := context.Background()
	f.addMember(t, "user-a", entities.RoleMember)
	f.addMember(t, "user-b", entities.RoleViewer)

	members, err := f.svc.ListMembers(ctx, f.space.ID(), "user-a")
	require.NoError(t, err)
	assert.Len(t, members, 3)

	_, err = f.svc.ListMembers(ctx, f.space.ID(), "user-stranger")
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestMembershipService_RedeemInviteCode(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newMembershipFixture(t)

		result, err := f.svc.RedeemInviteCode(ctx, f.space.JoinCode(), "user-joiner")
		require.NoError(t, err)
		assert.True(t, result.SpaceID.Equals(f.space.ID()))
		assert.Equal(t, "Team Space", result.SpaceName)
		assert.Equal(t, entities.RoleMember, result.Role)
		assert.False(t, result.JoinedAt.IsZero())

		m, err := f.memberships.Get(ctx, f.space.ID(), "user-joiner")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, entities.RoleMember, m.Role())
	})

	t.Run("code is case-insensitive", func(t *testing.T) {
		f := newMembershipFixture(t)

		_, err := f.svc.RedeemInviteCode(ctx, "  "+strings.ToLower(f.space.JoinCode())+" ", "user-joiner")
		assert.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newMembershipFixture(t)

		_, err := f.svc.RedeemInviteCode(ctx, "ZZZZZZZZ", "user-joiner")
		assert.True(t, pkgerrors.IsInvalidInviteCode(err))
	})

	t.Run("malformed code", func(t *testing.T) {
		f := newMembershipFixture(t)

		_, err := f.svc.RedeemInviteCode(ctx, "short", "user-joiner")
		assert.True(t, pkgerrors.IsInvalidInviteCode(err))
	})

	t.Run("already a member", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-joiner", entities.RoleMember)

		_, err := f.svc.RedeemInviteCode(ctx, f.space.JoinCode(), "user-joiner")
		assert.True(t, pkgerrors.IsAlreadyMember(err))
	})

	t.Run("lookup failure normalizes to invalid code", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.spaces.failJoinLookup = errors.New("dynamodb unavailable")

		_, err := f.svc.RedeemInviteCode(ctx, f.space.JoinCode(), "user-joiner")
		assert.True(t, pkgerrors.IsInvalidInviteCode(err))
	})

	t.Run("dangling mapping normalizes to invalid code", func(t *testing.T) {
		f := newMembershipFixture(t)
		require.NoError(t, f.spaces.Delete(ctx, f.space.ID()))

		_, err := f.svc.RedeemInviteCode(ctx, f.space.JoinCode(), "user-joiner")
		assert.True(t, pkgerrors.IsInvalidInviteCode(err))
	})
}

func TestMembershipService_RegenerateInviteCode(t *testing.T) {
	ctx := context.Background()

	t.Run("rotation invalidates the old code", func(t *testing.T) {
		f := newMembershipFixture(t)
		oldCode := f.space.JoinCode()

		newCode, err := f.svc.RegenerateInviteCode(ctx, f.space.ID(), "user-owner")
		require.NoError(t, err)
		require.NotEqual(t, oldCode, newCode)
		assert.Len(t, newCode, valueobjects.JoinCodeLength)

		_, err = f.svc.RedeemInviteCode(ctx, oldCode, "user-joiner")
		assert.True(t, pkgerrors.IsInvalidInviteCode(err))

		result, err := f.svc.RedeemInviteCode(ctx, newCode, "user-joiner")
		require.NoError(t, err)
		assert.True(t, result.SpaceID.Equals(f.space.ID()))
	})

	t.Run("requires member management rights", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.addMember(t, "user-member", entities.RoleMember)

		_, err := f.svc.RegenerateInviteCode(ctx, f.space.ID(), "user-member")
		assert.True(t, pkgerrors.IsForbidden(err))

		_, err = f.svc.RegenerateInviteCode(ctx, f.space.ID(), "user-stranger")
		assert.True(t, pkgerrors.IsForbidden(err))
	})

	t.Run("old mapping delete failure is non-fatal", func(t *testing.T) {
		f := newMembershipFixture(t)
		f.spaces.failJoinDelete = errors.New("dynamodb unavailable")

		newCode, err := f.svc.RegenerateInviteCode(ctx, f.space.ID(), "user-owner")
		require.NoError(t, err)

		f.spaces.failJoinDelete = nil
		_, err = f.svc.RedeemInviteCode(ctx, newCode, "user-joiner")
		assert.NoError(t, err)
	})
}
