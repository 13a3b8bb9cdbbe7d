package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/nexarq/taskmanager/internal/config"
)

// CredentialScheme converts a secret into its stored form and checks a
// presented secret against a stored one.
type CredentialScheme interface {
	// Seal returns the value to persist for secret.
	Seal(secret string) (string, error)
	// Match reports whether secret corresponds to stored.
	Match(secret, stored string) bool
}

// PlaintextScheme stores secrets verbatim and compares them with plain
// equality. It exists for compatibility with rows written by the legacy
// service and should not be used for new deployments.
type PlaintextScheme struct{}

// Seal returns the secret unchanged.
func (PlaintextScheme) Seal(secret string) (string, error) {
	return secret, nil
}

// Match compares secret and stored directly, in constant time.
func (PlaintextScheme) Match(secret, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(stored)) == 1
}

// Argon2Scheme stores argon2id PHC hashes.
type Argon2Scheme struct {
	Params Argon2Params
}

// NewArgon2Scheme returns an Argon2Scheme using DefaultArgon2Params.
func NewArgon2Scheme() *Argon2Scheme {
	return &Argon2Scheme{Params: DefaultArgon2Params}
}

// Seal hashes secret with a fresh salt.
func (s *Argon2Scheme) Seal(secret string) (string, error) {
	return HashPassword(secret, s.Params)
}

// Match verifies secret against the stored hash. Malformed hashes never match.
func (s *Argon2Scheme) Match(secret, stored string) bool {
	ok, err := VerifyPassword(secret, stored)
	return err == nil && ok
}

// SchemeFor returns the scheme selected by name (see config.CredentialScheme*).
func SchemeFor(name string) (CredentialScheme, error) {
	switch name {
	case config.CredentialSchemeArgon2:
		return NewArgon2Scheme(), nil
	case config.CredentialSchemePlaintext:
		return PlaintextScheme{}, nil
	default:
		return nil, fmt.Errorf("unknown credential scheme %q", name)
	}
}
