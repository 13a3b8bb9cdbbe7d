package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/nexarq/taskmanager/internal/auth"
	"github.com/nexarq/taskmanager/internal/middleware"
	"github.com/nexarq/taskmanager/internal/model"
)

var (
	errUserIDRequired = errors.New("user_id is required")
	errUnknownUser    = errors.New("unknown user")
)

// UserLookup resolves a user by ID without credentials.
type UserLookup interface {
	Lookup(ctx context.Context, id int64) (*model.User, error)
}

// ActorResolver determines which user a request acts for.
//
// Under per-user header authorization the user is already in the request
// context. Under shared-secret authorization the request names the user
// explicitly with user_id, which is looked up on every call.
type ActorResolver struct {
	lookup UserLookup
}

// NewActorResolver creates an ActorResolver. Pass a nil lookup when every
// authorized request carries its user in the context.
func NewActorResolver(lookup UserLookup) *ActorResolver {
	return &ActorResolver{lookup: lookup}
}

// Resolve returns the acting user. explicit is the user_id taken from the
// request body or query, if any. It returns (nil, nil) when the request is
// anonymous and no explicit ID can be used.
func (a *ActorResolver) Resolve(ctx context.Context, r *http.Request, explicit *int64) (*model.User, error) {
	if user := auth.UserFromContext(r.Context()); user != nil {
		return user, nil
	}
	if a == nil || a.lookup == nil {
		return nil, nil
	}
	if explicit == nil {
		return nil, errUserIDRequired
	}

	user, err := a.lookup.Lookup(ctx, *explicit)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUnknownUser
	}

	middleware.ReportUser(r, user.ID)
	return user, nil
}

// ResolveQuery is Resolve for body-less requests, taking user_id from the
// query string. The query is only read when the request does not already
// carry its user.
func (a *ActorResolver) ResolveQuery(ctx context.Context, r *http.Request) (*model.User, error) {
	if user := auth.UserFromContext(r.Context()); user != nil {
		return user, nil
	}
	if a == nil || a.lookup == nil {
		return nil, nil
	}
	explicit, err := queryUserID(r)
	if err != nil {
		return nil, err
	}
	return a.Resolve(ctx, r, explicit)
}

// queryUserID reads an optional user_id query parameter.
func queryUserID(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errUserIDRequired
	}
	return &id, nil
}

// writeActorError maps a resolution failure to a response and reports
// whether it did.
func writeActorError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, errUserIDRequired):
		writeError(w, http.StatusBadRequest, "user_id is required")
	case errors.Is(err, errUnknownUser):
		writeError(w, http.StatusBadRequest, "Unknown user")
	default:
		return false
	}
	return true
}
