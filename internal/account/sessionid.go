package account

import (
	"crypto/rand"
	"regexp"
)

// Session ids are 6 characters from an unambiguous alphabet (no O/0/I/1
// confusion) so players can read one off a screen.
const sessionAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const sessionIDLen = 6

var sessionIDPattern = regexp.MustCompile(`^[A-Z2-9]{6}$`)

// NewSessionID generates a random session identifier. Uniqueness is the
// caller's concern.
func NewSessionID() string {
	buf := make([]byte, sessionIDLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken, which is not recoverable here.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = sessionAlphabet[int(b)%len(sessionAlphabet)]
	}
	return string(buf)
}

// IsValidSessionID reports whether s has the session id shape.
func IsValidSessionID(s string) bool {
	return sessionIDPattern.MatchString(s)
}
