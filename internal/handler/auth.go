package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nexarq/taskmanager/internal/handler/dto"
	"github.com/nexarq/taskmanager/internal/service"
)

// AccountHandler handles registration, login and preference updates.
type AccountHandler struct {
	svc    *service.AccountService
	actors *ActorResolver
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, actors *ActorResolver, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, actors: actors, logger: logger}
}

// Register handles POST /auth/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.svc.Register(detach(r), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)
	writeJSON(w, http.StatusOK, dto.RegisterResponse{Message: "Registered", ID: user.ID})
}

// Login handles POST /auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	res, err := h.svc.Login(detach(r), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewLoginResponse(res.User.ID, res.Theme, res.LastLogin))
}

// SetPreference handles POST /user/preference.
func (h *AccountHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	var req dto.PreferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx := detach(r)
	user, err := h.actors.Resolve(ctx, r, req.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if err := h.svc.SetTheme(ctx, user, req.Theme); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// handleServiceError maps service errors to HTTP responses.
func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error) {
	if writeActorError(w, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEmailRequired), errors.Is(err, service.ErrPasswordRequired):
		writeError(w, http.StatusBadRequest, "Missing fields")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusBadRequest, "Email exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid creds")
	case errors.Is(err, service.ErrThemeRequired):
		writeError(w, http.StatusBadRequest, "Theme is required")
	case errors.Is(err, service.ErrCallerRequired):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
