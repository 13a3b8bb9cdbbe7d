package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nexarq/taskmanager/internal/config"
	"github.com/nexarq/taskmanager/internal/model"
)

// Header names carrying per-user credentials.
const (
	HeaderAuthID   = "X-Auth-Id"
	HeaderAuthPass = "X-Auth-Pass"
	HeaderAPIKey   = "X-API-Key"
)

// ErrUnauthorized is returned when a request carries missing or wrong credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Authorizer decides whether a request may perform a mutating call.
//
// On success it returns the caller's user record, or nil when the strategy
// authorizes requests without identifying a user. On failure it returns
// ErrUnauthorized; any other error is an infrastructure failure.
type Authorizer interface {
	Authorize(r *http.Request) (*model.User, error)
}

// HeaderAuthorizer authenticates each request with the X-Auth-Id and
// X-Auth-Pass headers.
type HeaderAuthorizer struct {
	verifier *Verifier
}

// NewHeaderAuthorizer creates a HeaderAuthorizer.
func NewHeaderAuthorizer(verifier *Verifier) *HeaderAuthorizer {
	return &HeaderAuthorizer{verifier: verifier}
}

// Authorize verifies the header credentials against the user store.
func (a *HeaderAuthorizer) Authorize(r *http.Request) (*model.User, error) {
	user, err := a.verifier.Verify(r.Context(), r.Header.Get(HeaderAuthID), r.Header.Get(HeaderAuthPass))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// SharedSecretAuthorizer admits requests presenting a single static secret.
// It does not identify the caller; handlers resolve an explicit user_id.
type SharedSecretAuthorizer struct {
	secret []byte
}

// NewSharedSecretAuthorizer creates a SharedSecretAuthorizer.
func NewSharedSecretAuthorizer(secret string) *SharedSecretAuthorizer {
	return &SharedSecretAuthorizer{secret: []byte(secret)}
}

// Authorize compares the presented secret in constant time.
func (a *SharedSecretAuthorizer) Authorize(r *http.Request) (*model.User, error) {
	presented := extractSharedSecret(r)
	if presented == "" || len(a.secret) == 0 {
		return nil, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(presented), a.secret) != 1 {
		return nil, ErrUnauthorized
	}
	return nil, nil
}

// extractSharedSecret supports both "Authorization: Bearer <secret>" and
// "X-API-Key: <secret>".
func extractSharedSecret(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.Header.Get(HeaderAPIKey)
}

// NewAuthorizer builds the strategy selected by mode (see config.AuthMode*).
func NewAuthorizer(mode, sharedSecret string, verifier *Verifier) (Authorizer, error) {
	switch mode {
	case config.AuthModeHeader:
		return NewHeaderAuthorizer(verifier), nil
	case config.AuthModeSharedSecret:
		if sharedSecret == "" {
			return nil, errors.New("shared secret mode requires a secret")
		}
		return NewSharedSecretAuthorizer(sharedSecret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}
