// package auth implements the Spotify Authorization Code + PKCE flow.
//
// No client secret is involved: the client proves possession of the
// original authorization request with a verifier/challenge pair (RFC 7636).
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	verifierBytes  = 64
	stateBytes     = 24
	minVerifierLen = 43
	maxVerifierLen = 128
)

// GenerateVerifier produces a PKCE code verifier from 64 bytes of
// cryptographically secure randomness, padded or truncated into the
// 43-128 character range RFC 7636 requires. The padding character is
// arbitrary since the verifier is opaque.
func GenerateVerifier() (string, error) {
	b := make([]byte, verifierBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	v := base64.RawURLEncoding.EncodeToString(b)
	if len(v) < minVerifierLen {
		v += strings.Repeat("A", minVerifierLen-len(v))
	}
	if len(v) > maxVerifierLen {
		v = v[:maxVerifierLen]
	}

	return v, nil
}

// ChallengeS256 derives the code challenge for a verifier: the
// unpadded URL-safe base64 encoding of its SHA-256 digest.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState produces the anti-forgery state token round-tripped
// through the authorization redirect.
func GenerateState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
