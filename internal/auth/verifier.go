package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nexarq/taskmanager/internal/model"
	"github.com/nexarq/taskmanager/internal/repository"
)

// UserStore is the subset of the repository the verifier needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Verifier maps caller-supplied identity and secret to a user record.
// Every call goes to the store; results are never cached, so a changed
// credential is observed by the very next call.
type Verifier struct {
	users  UserStore
	scheme CredentialScheme
	// decoy is matched against when the user does not exist, so an unknown
	// identity costs as much as a wrong secret.
	decoy string
}

// NewVerifier creates a Verifier.
func NewVerifier(users UserStore, scheme CredentialScheme) *Verifier {
	decoy, err := scheme.Seal("decoy-secret-never-issued")
	if err != nil {
		decoy = ""
	}
	return &Verifier{users: users, scheme: scheme, decoy: decoy}
}

// Scheme returns the credential scheme used to seal and match secrets.
func (v *Verifier) Scheme() CredentialScheme {
	return v.scheme
}

// Verify resolves the user whose ID is idToken and whose stored secret matches.
// It returns (nil, nil) on missing input, a malformed ID, an unknown user or a
// wrong secret. A non-nil error means the store failed.
func (v *Verifier) Verify(ctx context.Context, idToken, secret string) (*model.User, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" || secret == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(idToken, 10, 64)
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	user, err := v.users.GetUserByID(ctx, id)
	return v.check(user, err, secret)
}

// VerifyEmail is Verify keyed by email, used by login.
func (v *Verifier) VerifyEmail(ctx context.Context, email, secret string) (*model.User, error) {
	if email == "" || secret == "" {
		return nil, nil
	}

	user, err := v.users.GetUserByEmail(ctx, email)
	return v.check(user, err, secret)
}

// Lookup resolves a user by ID without a secret.
// Only valid once the request has been authorized by other means.
func (v *Verifier) Lookup(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, nil
	}

	user, err := v.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (v *Verifier) check(user *model.User, err error, secret string) (*model.User, error) {
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			v.scheme.Match(secret, v.decoy)
			return nil, nil
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if !v.scheme.Match(secret, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}
