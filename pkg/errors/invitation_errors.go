package errors

import "fmt"

// Stable error codes for the invitation and membership lifecycle.
// The HTTP layer exposes these verbatim; tests match on them.
const (
	CodeInvitationNotFound      = "INVITATION_NOT_FOUND"
	CodeInvitationExpired       = "INVITATION_EXPIRED"
	CodeInvalidInvitation       = "INVALID_INVITATION"
	CodeInvitationAlreadyExists = "INVITATION_ALREADY_EXISTS"
	CodeInvalidInviteCode       = "INVALID_INVITE_CODE"
	CodeAlreadyMember           = "ALREADY_MEMBER"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeSpaceNotFound           = "SPACE_NOT_FOUND"
	CodeMemberNotFound          = "MEMBER_NOT_FOUND"
)

// NewInvitationNotFound reports a missing invitation. Identity mismatches on
// accept use the same error so callers cannot probe for existence.
func NewInvitationNotFound() *DomainError {
	return NewDomainError(ErrorTypeNotFound, CodeInvitationNotFound, "invitation not found")
}

// NewInvitationExpired reports an invitation whose expiry has passed
func NewInvitationExpired() *DomainError {
	return NewDomainError(ErrorTypeExpired, CodeInvitationExpired, "invitation has expired")
}

// NewInvalidInvitation reports an invitation in a terminal state
func NewInvalidInvitation(message string) *DomainError {
	if message == "" {
		message = "invitation has already been accepted or declined"
	}
	return NewDomainError(ErrorTypeConflict, CodeInvalidInvitation, message)
}

// NewInvitationAlreadyExists reports a duplicate pending invitation
func NewInvitationAlreadyExists(spaceID, email string) *DomainError {
	return NewDomainError(ErrorTypeConflict, CodeInvitationAlreadyExists,
		fmt.Sprintf("a pending invitation for %s already exists in this space", email)).
		WithDetail("space_id", spaceID)
}

// NewInvalidInviteCode is the catch-all for any failure resolving a join
// code; it deliberately hides whether the code was unknown, stale, or the
// lookup itself failed.
func NewInvalidInviteCode() *DomainError {
	return NewDomainError(ErrorTypeNotFound, CodeInvalidInviteCode, "invalid invite code")
}

// NewAlreadyMember reports that the user already holds a role in the space
func NewAlreadyMember(spaceID, userID string) *DomainError {
	return NewDomainError(ErrorTypeConflict, CodeAlreadyMember, "user is already a member of this space").
		WithDetail("space_id", spaceID).
		WithDetail("user_id", userID)
}

// NewUserNotFound reports a missing user during the optional existence check
func NewUserNotFound(email string) *DomainError {
	return NewDomainError(ErrorTypeNotFound, CodeUserNotFound,
		fmt.Sprintf("no user found for %s", email))
}

// NewSpaceNotFound reports a missing space
func NewSpaceNotFound(spaceID string) *DomainError {
	return NewDomainError(ErrorTypeNotFound, CodeSpaceNotFound,
		fmt.Sprintf("space %s not found", spaceID))
}

// NewMemberNotFound reports a missing membership row
func NewMemberNotFound(spaceID, userID string) *DomainError {
	return NewDomainError(ErrorTypeNotFound, CodeMemberNotFound, "user is not a member of this space").
		WithDetail("space_id", spaceID).
		WithDetail("user_id", userID)
}

// Predicates used by services and tests

func IsInvitationNotFound(err error) bool  { return IsCode(err, CodeInvitationNotFound) }
func IsInvitationExpired(err error) bool   { return IsCode(err, CodeInvitationExpired) }
func IsInvalidInvitation(err error) bool   { return IsCode(err, CodeInvalidInvitation) }
func IsInvitationAlreadyExists(err error) bool {
	return IsCode(err, CodeInvitationAlreadyExists)
}
func IsInvalidInviteCode(err error) bool { return IsCode(err, CodeInvalidInviteCode) }
func IsAlreadyMember(err error) bool     { return IsCode(err, CodeAlreadyMember) }
func IsUserNotFound(err error) bool      { return IsCode(err, CodeUserNotFound) }
func IsSpaceNotFound(err error) bool     { return IsCode(err, CodeSpaceNotFound) }
