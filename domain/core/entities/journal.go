package entities

import (
	"time"

	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"
	"spaces-backend/pkg/utils"

	"github.com/google/uuid"
)

// JournalEntry is a dated entry authored by a space member
type JournalEntry struct {
	id        string
	spaceID   valueobjects.SpaceID
	authorID  string
	title     string
	content   string
	wordCount int
	createdAt time.Time
	updatedAt time.Time
}

// NewJournalEntry creates a journal entry with a server-side word count
func NewJournalEntry(spaceID valueobjects.SpaceID, authorID, title, content string) (*JournalEntry, error) {
	if spaceID.IsZero() {
		return nil, pkgerrors.NewValidationError("space ID cannot be empty")
	}
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("author ID cannot be empty")
	}
	if content == "" {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	if title == "" {
		title = utils.Excerpt(content, 50)
	}

	now := time.Now().UTC()
	return &JournalEntry{
		id:        uuid.New().String(),
		spaceID:   spaceID,
		authorID:  authorID,
		title:     title,
		content:   content,
		wordCount: utils.WordCount(content),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructJournalEntry rebuilds an entry from repository data
func ReconstructJournalEntry(id string, spaceID valueobjects.SpaceID, authorID, title, content string, wordCount int, createdAt, updatedAt time.Time) *JournalEntry {
	return &JournalEntry{
		id:        id,
		spaceID:   spaceID,
		authorID:  authorID,
		title:     title,
		content:   content,
		wordCount: wordCount,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (j *JournalEntry) ID() string                    { return j.id }
func (j *JournalEntry) SpaceID() valueobjects.SpaceID { return j.spaceID }
func (j *JournalEntry) AuthorID() string              { return j.authorID }
func (j *JournalEntry) Title() string                 { return j.title }
func (j *JournalEntry) Content() string               { return j.content }
func (j *JournalEntry) WordCount() int                { return j.wordCount }
func (j *JournalEntry) CreatedAt() time.Time          { return j.createdAt }
func (j *JournalEntry) UpdatedAt() time.Time          { return j.updatedAt }

// UpdateContent replaces the entry body and recomputes the word count
func (j *JournalEntry) UpdateContent(content string) error {
	if content == "" {
		return pkgerrors.NewValidationError("content cannot be empty")
	}
	j.content = content
	j.wordCount = utils.WordCount(content)
	j.updatedAt = time.Now().UTC()
	return nil
}
