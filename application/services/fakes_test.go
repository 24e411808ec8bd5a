package services

import (
	"context"
	"sort"
	"sync"

	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/domain/events"
	pkgerrors "spaces-backend/pkg/errors"
)

// In-memory repository fakes. They mirror the conditional-write semantics
// of the DynamoDB implementations (duplicate pending invitation, duplicate
// membership) and store snapshots so entities mutated by the service are
// only visible after an explicit write.

func cloneInvitation(inv *entities.Invitation) *entities.Invitation {
	clone, err := entities.ReconstructInvitation(entities.ReconstructInvitationParams{
		ID:            inv.ID(),
		SpaceID:       inv.SpaceID(),
		InviteeEmail:  inv.InviteeEmail(),
		InviterUserID: inv.InviterUserID(),
		Status:        inv.Status(),
		Role:          inv.Role(),
		Message:       inv.Message(),
		SpaceName:     inv.SpaceName(),
		InviterName:   inv.InviterName(),
		Code:          inv.Code(),
		CreatedAt:     inv.CreatedAt(),
		ExpiresAt:     inv.ExpiresAt(),
		AcceptedAt:    inv.AcceptedAt(),
		AcceptedBy:    inv.AcceptedBy(),
		CancelledAt:   inv.CancelledAt(),
		CancelledBy:   inv.CancelledBy(),
	})
	if err != nil {
		panic(err)
	}
	return clone
}

type fakeInvitationRepo struct {
	mu    sync.Mutex
	byID  map[string]*entities.Invitation
	order []string

	failCreate error
	failUpdate error
	failRead   error
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byID: make(map[string]*entities.Invitation)}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, inv *entities.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.byID {
		if existing.SpaceID().Equals(inv.SpaceID()) &&
			existing.InviteeEmail().Equals(inv.InviteeEmail()) &&
			existing.IsUsable(inv.CreatedAt()) {
			return pkgerrors.NewInvitationAlreadyExists(inv.SpaceID().String(), inv.InviteeEmail().String())
		}
	}
	r.byID[inv.ID().String()] = cloneInvitation(inv)
	r.order = append(r.order, inv.ID().String())
	return nil
}

func (r *fakeInvitationRepo) GetByID(ctx context.Context, id valueobjects.InvitationID) (*entities.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead != nil {
		return nil, r.failRead
	}
	inv, ok := r.byID[id.String()]
	if !ok {
		return nil, nil
	}
	return cloneInvitation(inv), nil
}

func (r *fakeInvitationRepo) GetByCode(ctx context.Context, code string) (*entities.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead != nil {
		return nil, r.failRead
	}
	for _, inv := range r.byID {
		if inv.Code() != "" && inv.Code() == code {
			return cloneInvitation(inv), nil
		}
	}
	return nil, nil
}

func (r *fakeInvitationRepo) GetByInvitee(ctx context.Context, email valueobjects.Email) ([]*entities.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead != nil {
		return nil, r.failRead
	}
	var out []*entities.Invitation
	for _, id := range r.sortedIDs() {
		inv := r.byID[id]
		if inv.InviteeEmail().Equals(email) {
			out = append(out, cloneInvitation(inv))
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) GetBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead != nil {
		return nil, r.failRead
	}
	var out []*entities.Invitation
	for _, id := range r.sortedIDs() {
		inv := r.byID[id]
		if inv.SpaceID().Equals(spaceID) {
			out = append(out, cloneInvitation(inv))
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) ListAll(ctx context.Context) ([]*entities.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead != nil {
		return nil, r.failRead
	}
	var out []*entities.Invitation
	for _, id := range r.sortedIDs() {
		out = append(out, cloneInvitation(r.byID[id]))
	}
	return out, nil
}

func (r *fakeInvitationRepo) UpdateStatus(ctx context.Context, inv *entities.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.byID[inv.ID().String()]; !ok {
		return pkgerrors.NewInvitationNotFound()
	}
	r.byID[inv.ID().String()] = cloneInvitation(inv)
	return nil
}

func (r *fakeInvitationRepo) sortedIDs() []string {
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}

// stored returns the persisted state of an invitation, bypassing the port
func (r *fakeInvitationRepo) stored(id valueobjects.InvitationID) *entities.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id.String()]
	if !ok {
		return nil
	}
	return cloneInvitation(inv)
}

type fakeMembershipRepo struct {
	mu   sync.Mutex
	rows map[string]*entities.Membership

	failCreate error
	failRead   error
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{rows: make(map[string]*entities.Membership)}
}

func membershipKey(spaceID valueobjects.SpaceID, userID string) string {
	return spaceID.String() + "#" + userID
}

func cloneMembership(m *entities.Membership) *entities.Membership {
	return entities.ReconstructMembership(m.SpaceID(), m.UserID(), m.Role(), m.JoinedAt(), m.AddedBy())
}

func (r *fakeMembershipRepo) Create(ctx context.Context, m *entities.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	key := membershipKey(m.SpaceID(), m.UserID())
	if _, ok := r.rows[key]; ok {
		return pkgerrors.NewAlreadyMember(m.SpaceID().String(), m.UserID())
	}
	r.rows[key] = cloneMembership(m)
	return nil
}

func (r *fakeMembershipRepo) Get(ctx context.Context, spaceID valueobjects.SpaceID, userID string) (*entities.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRead != nil {
		return nil, r.failRead
	}
	m, ok := r.rows[membershipKey(spaceID, userID)]
	if !ok {
		return nil, nil
	}
	return cloneMembership(m), nil
}

func (r *fakeMembershipRepo) ListBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Membership
	for _, m := range r.rows {
		if m.SpaceID().Equals(spaceID) {
			out = append(out, cloneMembership(m))
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) ListByUser(ctx context.Context, userID string) ([]*entities.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Membership
	for _, m := range r.rows {
		if m.UserID() == userID {
			out = append(out, cloneMembership(m))
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) Delete(ctx context.Context, spaceID valueobjects.SpaceID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, membershipKey(spaceID, userID))
	return nil
}

func (r *fakeMembershipRepo) count(spaceID valueobjects.SpaceID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.rows {
		if m.SpaceID().Equals(spaceID) {
			n++
		}
	}
	return n
}

type fakeSpaceRepo struct {
	mu        sync.Mutex
	spaces    map[string]*entities.Space
	joinCodes map[string]valueobjects.SpaceID

	failJoinLookup error
	failJoinDelete error
}

func newFakeSpaceRepo() *fakeSpaceRepo {
	return &fakeSpaceRepo{
		spaces:    make(map[string]*entities.Space),
		joinCodes: make(map[string]valueobjects.SpaceID),
	}
}

func (r *fakeSpaceRepo) Create(ctx context.Context, space *entities.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spaces[space.ID().String()] = space
	return nil
}

func (r *fakeSpaceRepo) GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spaces[id.String()], nil
}

func (r *fakeSpaceRepo) Update(ctx context.Context, space *entities.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spaces[space.ID().String()] = space
	return nil
}

func (r *fakeSpaceRepo) Delete(ctx context.Context, id valueobjects.SpaceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.spaces, id.String())
	return nil
}

func (r *fakeSpaceRepo) GetSpaceIDByJoinCode(ctx context.Context, code string) (valueobjects.SpaceID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failJoinLookup != nil {
		return valueobjects.SpaceID{}, r.failJoinLookup
	}
	return r.joinCodes[code], nil
}

func (r *fakeSpaceRepo) PutJoinCode(ctx context.Context, code string, spaceID valueobjects.SpaceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joinCodes[code] = spaceID
	return nil
}

func (r *fakeSpaceRepo) DeleteJoinCode(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failJoinDelete != nil {
		return r.failJoinDelete
	}
	delete(r.joinCodes, code)
	return nil
}

type stubEventBus struct {
	mu        sync.Mutex
	published []events.DomainEvent
	fail      error
}

func (b *stubEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.published = append(b.published, event)
	return nil
}

func (b *stubEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail != nil {
		return b.fail
	}
	b.published = append(b.published, batch...)
	return nil
}

func (b *stubEventBus) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var types []string
	for _, e := range b.published {
		types = append(types, e.GetEventType())
	}
	return types
}

type stubDirectory struct {
	users  map[string]string // email -> user ID
	spaces map[string]bool
	err    error
}

func (d *stubDirectory) GetUserByEmail(ctx context.Context, email valueobjects.Email) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	return d.users[email.String()], nil
}

func (d *stubDirectory) SpaceExists(ctx context.Context, spaceID valueobjects.SpaceID) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.spaces[spaceID.String()], nil
}

type fakeJournalRepo struct {
	mu      sync.Mutex
	entries map[string]*entities.JournalEntry // spaceID#entryID
	order   []string
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{entries: make(map[string]*entities.JournalEntry)}
}

func journalKey(spaceID valueobjects.SpaceID, entryID string) string {
	return spaceID.String() + "#" + entryID
}

func (r *fakeJournalRepo) Create(ctx context.Context, entry *entities.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := journalKey(entry.SpaceID(), entry.ID())
	r.entries[key] = entry
	r.order = append(r.order, key)
	return nil
}

func (r *fakeJournalRepo) GetByID(ctx context.Context, spaceID valueobjects.SpaceID, entryID string) (*entities.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[journalKey(spaceID, entryID)], nil
}

func (r *fakeJournalRepo) ListBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.JournalEntry
	for i := len(r.order) - 1; i >= 0; i-- {
		entry, ok := r.entries[r.order[i]]
		if ok && entry.SpaceID().Equals(spaceID) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeJournalRepo) Delete(ctx context.Context, spaceID valueobjects.SpaceID, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, journalKey(spaceID, entryID))
	return nil
}
