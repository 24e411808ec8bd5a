package events

import (
	"encoding/json"
	"testing"
	"time"

	"spaces-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Consumers decode event details into plain string fields, so the
// value-object IDs must serialize as JSON strings.
func TestMemberJoined_SerializesIDsAsStrings(t *testing.T) {
	spaceID := valueobjects.NewSpaceID()
	event := NewMemberJoined(spaceID, "user-1", "member", "join_code", time.Now())

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var detail struct {
		AggregateID string `json:"aggregate_id"`
		SpaceID     string `json:"space_id"`
		UserID      string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, spaceID.String(), detail.SpaceID)
	assert.Equal(t, spaceID.String(), detail.AggregateID)
	assert.Equal(t, "user-1", detail.UserID)
}

func TestInvitationCreated_SerializesIDsAsStrings(t *testing.T) {
	invitationID := valueobjects.NewInvitationID()
	spaceID := valueobjects.NewSpaceID()
	event := NewInvitationCreated(invitationID, spaceID, "bob@example.com", "user-1", time.Now())

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var detail struct {
		InvitationID string `json:"invitation_id"`
		SpaceID      string `json:"space_id"`
		InviteeEmail string `json:"invitee_email"`
	}
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, invitationID.String(), detail.InvitationID)
	assert.Equal(t, spaceID.String(), detail.SpaceID)
	assert.Equal(t, "bob@example.com", detail.InviteeEmail)
}
