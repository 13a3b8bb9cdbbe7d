package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexarq/taskmanager/internal/auth"
	"github.com/nexarq/taskmanager/internal/metrics"
	"github.com/nexarq/taskmanager/internal/model"
	"github.com/nexarq/taskmanager/internal/repository"
)

// UserCreator persists new users.
type UserCreator interface {
	CreateUser(ctx context.Context, user *model.User) error
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User  *model.User
	Theme string
	// LastLogin is the previous login, nil on the first one.
	LastLogin *time.Time
}

// AccountService handles registration, login and preference updates.
type AccountService struct {
	users    UserCreator
	verifier *auth.Verifier
	prefs    *Preferences
	logger   *slog.Logger
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserCreator, verifier *auth.Verifier, prefs *Preferences, logger *slog.Logger, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		users:    users,
		verifier: verifier,
		prefs:    prefs,
		logger:   logger,
		metrics:  recorder,
		now:      time.Now,
	}
}

// Register creates a user with a sealed secret.
func (s *AccountService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	sealed, err := s.verifier.Scheme().Seal(password)
	if err != nil {
		return nil, fmt.Errorf("seal password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: sealed}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials, reads the stored preferences and then records
// this login. The returned LastLogin is the value from before this call.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.verifier.VerifyEmail(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.IncLogin(false)
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	prefs, err := s.prefs.Load(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.prefs.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}

	s.metrics.IncLogin(true)
	s.logger.Info("user logged in", slog.Int64("user_id", user.ID), slog.Bool("first_login", prefs.LastLogin == nil))

	return &LoginResult{User: user, Theme: prefs.Theme, LastLogin: prefs.LastLogin}, nil
}

// SetTheme overwrites the caller's theme.
func (s *AccountService) SetTheme(ctx context.Context, user *model.User, theme string) error {
	if user == nil {
		return ErrCallerRequired
	}
	return s.prefs.SetTheme(ctx, user.ID, strings.TrimSpace(theme))
}
