package services

import (
	"context"
	"testing"

	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSpaceService(t *testing.T) (*SpaceService, *fakeSpaceRepo, *fakeMembershipRepo, *stubEventBus) {
	t.Helper()
	spaces := newFakeSpaceRepo()
	memberships := newFakeMembershipRepo()
	bus := &stubEventBus{}
	return NewSpaceService(spaces, memberships, bus, zap.NewNop()), spaces, memberships, bus
}

func TestSpaceService_CreateSpace(t *testing.T) {
	svc, spaces, memberships, bus := newSpaceService(t)
	ctx := context.Background()

	space, err := svc.CreateSpace(ctx, "Design Team", "weekly critiques", "user-owner")
	require.NoError(t, err)

	assert.Equal(t, "Design Team", space.Name())
	assert.Len(t, space.JoinCode(), valueobjects.JoinCodeLength)

	// The creator holds the only owner row.
	owner, err := memberships.Get(ctx, space.ID(), "user-owner")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, entities.RoleOwner, owner.Role())
	assert.Equal(t, 1, memberships.count(space.ID()))

	// Join code maps back to the space.
	mapped, err := spaces.GetSpaceIDByJoinCode(ctx, space.JoinCode())
	require.NoError(t, err)
	assert.True(t, mapped.Equals(space.ID()))

	assert.Contains(t, bus.eventTypes(), "space.member_joined")
}

func TestSpaceService_CreateSpace_InvalidName(t *testing.T) {
	svc, _, _, _ := newSpaceService(t)

	_, err := svc.CreateSpace(context.Background(), "", "", "user-owner")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSpaceService_GetSpace_NonMemberSeesNotFound(t *testing.T) {
	svc, _, _, _ := newSpaceService(t)
	ctx := context.Background()

	space, err := svc.CreateSpace(ctx, "Design Team", "", "user-owner")
	require.NoError(t, err)

	got, err := svc.GetSpace(ctx, space.ID(), "user-owner")
	require.NoError(t, err)
	assert.Equal(t, space.ID(), got.ID())

	_, err = svc.GetSpace(ctx, space.ID(), "user-stranger")
	assert.True(t, pkgerrors.IsSpaceNotFound(err))
}

func TestSpaceService_UpdateSpace(t *testing.T) {
	svc, _, memberships, _ := newSpaceService(t)
	ctx := context.Background()

	space, err := svc.CreateSpace(ctx, "Design Team", "", "user-owner")
	require.NoError(t, err)

	member, err := entities.NewMembership(space.ID(), "user-bob", entities.RoleMember, "user-owner")
	require.NoError(t, err)
	require.NoError(t, memberships.Create(ctx, member))

	_, err = svc.UpdateSpace(ctx, space.ID(), "Renamed", "new purpose", "user-bob")
	assert.True(t, pkgerrors.IsForbidden(err))

	updated, err := svc.UpdateSpace(ctx, space.ID(), "Renamed", "new purpose", "user-owner")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name())
	assert.Equal(t, "new purpose", updated.Description())
}

func TestSpaceService_DeleteSpace(t *testing.T) {
	svc, spaces, memberships, _ := newSpaceService(t)
	ctx := context.Background()

	space, err := svc.CreateSpace(ctx, "Design Team", "", "user-owner")
	require.NoError(t, err)

	admin, err := entities.NewMembership(space.ID(), "user-admin", entities.RoleAdmin, "user-owner")
	require.NoError(t, err)
	require.NoError(t, memberships.Create(ctx, admin))

	err = svc.DeleteSpace(ctx, space.ID(), "user-admin")
	assert.True(t, pkgerrors.IsForbidden(err), "admins cannot delete the space")

	require.NoError(t, svc.DeleteSpace(ctx, space.ID(), "user-owner"))

	stored, err := spaces.GetByID(ctx, space.ID())
	require.NoError(t, err)
	assert.Nil(t, stored)

	// The join-code mapping goes with the space.
	mapped, err := spaces.GetSpaceIDByJoinCode(ctx, space.JoinCode())
	require.NoError(t, err)
	assert.True(t, mapped.IsZero())
}
