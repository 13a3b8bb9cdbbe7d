package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nexarq/taskmanager/internal/auth"
)

// AuthorizeConfig holds configuration for the authorization middleware.
type AuthorizeConfig struct {
	Logger     *slog.Logger
	Authorizer auth.Authorizer
	// MinDuration pads every authorization attempt to at least this long.
	// Zero disables padding.
	MinDuration time.Duration
}

// Authorize returns a middleware that runs the configured authorization
// strategy before the handler. A rejected request never reaches the handler.
// When the strategy identifies a user, it is stored in the request context.
func Authorize(cfg AuthorizeConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.MinDuration > 0 {
				start := time.Now()
				defer func() {
					if elapsed := time.Since(start); elapsed < cfg.MinDuration {
						time.Sleep(cfg.MinDuration - elapsed)
					}
				}()
			}

			user, err := cfg.Authorizer.Authorize(r)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					cfg.Logger.Warn("authorization failed",
						slog.String("reason", "invalid_credentials"),
						slog.String("ip", r.RemoteAddr),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}

				cfg.Logger.Error("credential store error during authorization",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := r.Context()
			if user != nil {
				ctx = auth.ContextWithUser(ctx, user)
				ReportUser(r, user.ID)
				cfg.Logger.Debug("authorization successful",
					slog.Int64("user_id", user.ID),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(ctx)),
				)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes the {"error": message} body shared with the handlers.
// The 401 message is identical for every failure to prevent enumeration.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
