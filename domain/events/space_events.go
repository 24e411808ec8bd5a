package events

import (
	"time"

	"spaces-backend/domain/core/valueobjects"
)

// MemberJoined is raised when a membership row is created
type MemberJoined struct {
	BaseEvent
	SpaceID valueobjects.SpaceID `json:"space_id"`
	UserID  string               `json:"user_id"`
	Role    string               `json:"role"`
	Via     string               `json:"via"` // invitation, join_code, admin_add, space_created
}

// NewMemberJoined creates a MemberJoined event
func NewMemberJoined(spaceID valueobjects.SpaceID, userID, role, via string, timestamp time.Time) MemberJoined {
	return MemberJoined{
		BaseEvent: BaseEvent{
			AggregateID: spaceID.String(),
			EventType:   "space.member_joined",
			Timestamp:   timestamp,
			Version:     1,
		},
		SpaceID: spaceID,
		UserID:  userID,
		Role:    role,
		Via:     via,
	}
}

// MemberRemoved is raised when a membership row is deleted
type MemberRemoved struct {
	BaseEvent
	SpaceID   valueobjects.SpaceID `json:"space_id"`
	UserID    string               `json:"user_id"`
	RemovedBy string               `json:"removed_by"`
}

// NewMemberRemoved creates a MemberRemoved event
func NewMemberRemoved(spaceID valueobjects.SpaceID, userID, removedBy string, timestamp time.Time) MemberRemoved {
	return MemberRemoved{
		BaseEvent: BaseEvent{
			AggregateID: spaceID.String(),
			EventType:   "space.member_removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		SpaceID:   spaceID,
		UserID:    userID,
		RemovedBy: removedBy,
	}
}

// JournalEntryCreated is raised when a journal entry is persisted
type JournalEntryCreated struct {
	BaseEvent
	SpaceID   valueobjects.SpaceID `json:"space_id"`
	EntryID   string               `json:"entry_id"`
	AuthorID  string               `json:"author_id"`
	WordCount int                  `json:"word_count"`
}

// NewJournalEntryCreated creates a JournalEntryCreated event
func NewJournalEntryCreated(spaceID valueobjects.SpaceID, entryID, authorID string, wordCount int, timestamp time.Time) JournalEntryCreated {
	return JournalEntryCreated{
		BaseEvent: BaseEvent{
			AggregateID: spaceID.String(),
			EventType:   "journal.entry_created",
			Timestamp:   timestamp,
			Version:     1,
		},
		SpaceID:   spaceID,
		EntryID:   entryID,
		AuthorID:  authorID,
		WordCount: wordCount,
	}
}
