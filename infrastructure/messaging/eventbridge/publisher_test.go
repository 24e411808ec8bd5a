package eventbridge

import (
	"testing"
	"time"

	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unmarshalableEvent cannot be serialized; channels have no JSON encoding
type unmarshalableEvent struct {
	events.BaseEvent
	Ch chan int `json:"ch"`
}

func TestBuildEntries_DropsUnmarshalableEvents(t *testing.T) {
	p := &Publisher{eventBusName: "test-bus", logger: zap.NewNop()}

	before := events.NewMemberJoined(valueobjects.NewSpaceID(), "user-1", "member", "invitation", time.Now())
	bad := unmarshalableEvent{
		BaseEvent: events.BaseEvent{EventType: "bad.event", Timestamp: time.Now()},
		Ch:        make(chan int),
	}
	after := events.NewMemberRemoved(valueobjects.NewSpaceID(), "user-2", "user-1", time.Now())

	entries := p.buildEntries([]events.DomainEvent{before, bad, after})

	// The dropped event must not leave a hole: entry order and count track
	// what was actually serialized, which is what PutEvents result entries
	// align with.
	require.Len(t, entries, 2)
	assert.Equal(t, "space.member_joined", aws.ToString(entries[0].DetailType))
	assert.Equal(t, "space.member_removed", aws.ToString(entries[1].DetailType))
}

func TestBuildEntries_SetsEnvelopeFields(t *testing.T) {
	p := &Publisher{eventBusName: "test-bus", logger: zap.NewNop()}

	spaceID := valueobjects.NewSpaceID()
	event := events.NewMemberJoined(spaceID, "user-1", "member", "join_code", time.Now())

	entries := p.buildEntries([]events.DomainEvent{event})
	require.Len(t, entries, 1)

	assert.Equal(t, "test-bus", aws.ToString(entries[0].EventBusName))
	assert.Equal(t, eventSource, aws.ToString(entries[0].Source))
	assert.Contains(t, aws.ToString(entries[0].Detail), spaceID.String())
}
