// Package auth implements the shared-token scheme used between the ledger
// and its remote authority.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Scheme is the custom authorization scheme carried in the Authorization header.
const Scheme = "PIA"

// tokenBytes is the amount of randomness in a generated token.
const tokenBytes = 64

var (
	ErrInvalidToken = errors.New("no valid token found")
	ErrMissingToken = errors.New("authorization token required")
)

// FormatHeader builds the Authorization header value for token.
func FormatHeader(token string) string {
	return Scheme + " " + token
}

// ParseHeader extracts the token from an Authorization header value.
// Any scheme other than PIA, or an empty token, is rejected.
func ParseHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != Scheme {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidToken
	}
	return token, nil
}

// GenerateToken returns a random URL-safe token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// TokenVerifier checks presented tokens against the SHA-256 digest of the
// configured one. The plain token is not retained.
type TokenVerifier struct {
	digest [sha256.Size]byte
}

// NewTokenVerifier returns a verifier for token.
func NewTokenVerifier(token string) (*TokenVerifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	return &TokenVerifier{digest: sha256.Sum256([]byte(token))}, nil
}

// Verify reports whether token matches the configured token. The comparison
// runs in constant time over fixed-size digests.
func (v *TokenVerifier) Verify(token string) bool {
	sum := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(sum[:], v.digest[:]) == 1
}
