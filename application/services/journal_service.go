package services

import (
	"context"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/domain/events"
	pkgerrors "spaces-backend/pkg/errors"

	"go.uber.org/zap"
)

// JournalService handles journal entries within a space. Formatting and
// word counts only; membership gates access.
type JournalService struct {
	journal     ports.JournalRepository
	memberships ports.MembershipRepository
	eventBus    ports.EventBus
	logger      *zap.Logger
}

// NewJournalService creates a new journal service
func NewJournalService(
	journal ports.JournalRepository,
	memberships ports.MembershipRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *JournalService {
	return &JournalService{
		journal:     journal,
		memberships: memberships,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// CreateEntry authors a new journal entry. The author must hold a writing
// role in the space.
func (s *JournalService) CreateEntry(ctx context.Context, spaceID valueobjects.SpaceID, authorID, title, content string) (*entities.JournalEntry, error) {
	member, err := s.memberships.Get(ctx, spaceID, authorID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to check membership")
	}
	if member == nil || !member.Role().CanWrite() {
		return nil, pkgerrors.NewForbiddenError("only writing members can author journal entries")
	}

	entry, err := entities.NewJournalEntry(spaceID, authorID, title, content)
	if err != nil {
		return nil, err
	}

	if err := s.journal.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create journal entry")
	}

	if s.eventBus != nil {
		event := events.NewJournalEntryCreated(spaceID, entry.ID(), authorID, entry.WordCount(), entry.CreatedAt())
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish journal event", zap.Error(err))
		}
	}

	return entry, nil
}

// GetEntry returns one entry, member-only
func (s *JournalService) GetEntry(ctx context.Context, spaceID valueobjects.SpaceID, entryID, requestedBy string) (*entities.JournalEntry, error) {
	if err := s.requireMember(ctx, spaceID, requestedBy); err != nil {
		return nil, err
	}

	entry, err := s.journal.GetByID(ctx, spaceID, entryID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to get journal entry")
	}
	if entry == nil {
		return nil, pkgerrors.NewNotFoundError("journal entry")
	}
	return entry, nil
}

// ListEntries returns a space's entries newest first, member-only
func (s *JournalService) ListEntries(ctx context.Context, spaceID valueobjects.SpaceID, requestedBy string) ([]*entities.JournalEntry, error) {
	if err := s.requireMember(ctx, spaceID, requestedBy); err != nil {
		return nil, err
	}
	return s.journal.ListBySpace(ctx, spaceID)
}

// DeleteEntry removes an entry. The author or a member-managing role only.
func (s *JournalService) DeleteEntry(ctx context.Context, spaceID valueobjects.SpaceID, entryID, requestedBy string) error {
	member, err := s.memberships.Get(ctx, spaceID, requestedBy)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to check membership")
	}
	if member == nil {
		return pkgerrors.NewForbiddenError("only members can delete journal entries")
	}

	entry, err := s.journal.GetByID(ctx, spaceID, entryID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get journal entry")
	}
	if entry == nil {
		return pkgerrors.NewNotFoundError("journal entry")
	}

	if entry.AuthorID() != requestedBy && !member.Role().CanManageMembers() {
		return pkgerrors.NewForbiddenError("only the author or an admin can delete this entry")
	}

	return s.journal.Delete(ctx, spaceID, entryID)
}

func (s *JournalService) requireMember(ctx context.Context, spaceID valueobjects.SpaceID, userID string) error {
	member, err := s.memberships.Get(ctx, spaceID, userID)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to check membership")
	}
	if member == nil {
		return pkgerrors.NewForbiddenError("only members can access a space's journal")
	}
	return nil
}
