package valueobjects

import (
	"errors"
	"strings"
)

// Email is a normalized email address. Invitations are keyed by invitee
// email because the recipient may not have an account yet; normalization
// keeps "Alice@Example.com" and "alice@example.com" from producing two
// pending invitations for the same person.
type Email struct {
	value string
}

// NewEmail normalizes and validates an email address
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, errors.New("email cannot be empty")
	}

	at := strings.Index(normalized, "@")
	if at <= 0 || at == len(normalized)-1 {
		return Email{}, errors.New("email must contain a local part and a domain")
	}
	if strings.Count(normalized, "@") != 1 {
		return Email{}, errors.New("email must contain exactly one @")
	}
	if !strings.Contains(normalized[at+1:], ".") {
		return Email{}, errors.New("email domain is invalid")
	}

	return Email{value: normalized}, nil
}

// String returns the normalized address
func (e Email) String() string {
	return e.value
}

// Equals checks if two emails are equal after normalization
func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// IsZero checks if the Email is the zero value
func (e Email) IsZero() bool {
	return e.value == ""
}
