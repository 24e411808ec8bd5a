package valueobjects

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
)

// joinCodeAlphabet excludes 0/O/1/I/L to keep codes unambiguous when read
// aloud or typed from a whiteboard.
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the length of space-level join codes
const JoinCodeLength = 8

// NewInvitationCode generates a URL-safe random token used as the alternate
// lookup key for code-based invitation acceptance.
func NewInvitationCode() string {
	buf := make([]byte, 24)
	rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// NewJoinCode generates a short, human-enterable, space-scoped code
func NewJoinCode() string {
	buf := make([]byte, JoinCodeLength)
	rand.Read(buf)
	code := make([]byte, JoinCodeLength)
	for i, b := range buf {
		code[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(code)
}

// NormalizeJoinCode uppercases and trims a user-entered join code
func NormalizeJoinCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", errors.New("join code cannot be empty")
	}
	return code, nil
}
