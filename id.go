package rewind

import (
	"crypto/rand"
	"encoding/hex"
)

// generateID returns a random 16-byte hex token, used as a default
// command identifier when the caller does not supply one.
func generateID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to
		// a fixed all-zero token (the same on every such call) rather than
		// panicking a caller that never asked for randomness guarantees.
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(buf[:])
}
