package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// InvitationID is a value object representing a unique invitation identifier
// Value objects are immutable and have no identity beyond their value
type InvitationID struct {
	value string
}

// NewInvitationID creates a new random InvitationID
func NewInvitationID() InvitationID {
	return InvitationID{value: uuid.New().String()}
}

// NewInvitationIDFromString creates an InvitationID from an existing string
func NewInvitationIDFromString(id string) (InvitationID, error) {
	if id == "" {
		return InvitationID{}, errors.New("invitation ID cannot be empty")
	}
	if !isValidUUID(id) {
		return InvitationID{}, errors.New("invitation ID must be a valid UUID")
	}
	return InvitationID{value: id}, nil
}

// String returns the string representation of the InvitationID
func (id InvitationID) String() string {
	return id.value
}

// Equals checks if two InvitationIDs are equal
func (id InvitationID) Equals(other InvitationID) bool {
	return id.value == other.value
}

// IsZero checks if the InvitationID is the zero value
func (id InvitationID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id InvitationID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *InvitationID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("InvitationID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// SpaceID is a value object representing a unique space identifier
type SpaceID struct {
	value string
}

// NewSpaceID creates a new random SpaceID
func NewSpaceID() SpaceID {
	return SpaceID{value: uuid.New().String()}
}

// NewSpaceIDFromString creates a SpaceID from an existing string
func NewSpaceIDFromString(id string) (SpaceID, error) {
	if id == "" {
		return SpaceID{}, errors.New("space ID cannot be empty")
	}
	return SpaceID{value: id}, nil
}

// String returns the string representation of the SpaceID
func (id SpaceID) String() string {
	return id.value
}

// Equals checks if two SpaceIDs are equal
func (id SpaceID) Equals(other SpaceID) bool {
	return id.value == other.value
}

// IsZero checks if the SpaceID is the zero value
func (id SpaceID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id SpaceID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *SpaceID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("SpaceID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

func isValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
