package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// IncorrectPassword is the single violation reported when a gate refuses a write.
const IncorrectPassword = "Incorrect password"

// Gate decides whether a mutation may proceed given the submitted secret.
// It is a capability check, not an identity: nothing about the caller is
// remembered between requests.
type Gate interface {
	Allow(secret string) bool
}

// PasswordGate allows writes carrying one shared password.
type PasswordGate struct {
	hash []byte
}

// NewPasswordGate accepts either the plaintext password or its bcrypt hash.
func NewPasswordGate(secret string) (*PasswordGate, error) {
	if secret == "" {
		return nil, fmt.Errorf("write password must not be empty")
	}

	if isBcryptHash(secret) {
		if _, err := bcrypt.Cost([]byte(secret)); err != nil {
			return nil, fmt.Errorf("parsing write password hash: %w", err)
		}
		return &PasswordGate{hash: []byte(secret)}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing write password: %w", err)
	}
	return &PasswordGate{hash: hash}, nil
}

// Allow reports whether secret matches the configured password.
func (g *PasswordGate) Allow(secret string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(secret)) == nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
