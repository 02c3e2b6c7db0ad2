package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionTokenPrefix makes bearer tokens recognizable in logs and support
// dumps without revealing anything about their contents.
const sessionTokenPrefix = "sbs_"

// minEntropyBytes is the floor on random bytes per token; a zero-value
// SessionTokens is safe to use.
const minEntropyBytes = 24

// SessionTokens mints the opaque bearer tokens the auth service issues on
// register and login. Tokens are url-safe so they survive Authorization
// headers and query strings untouched.
type SessionTokens struct {
	Entropy int
}

func (g SessionTokens) NewToken() (string, error) {
	n := g.Entropy
	if n < minEntropyBytes {
		n = minEntropyBytes
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: session token entropy: %w", err)
	}
	return sessionTokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
