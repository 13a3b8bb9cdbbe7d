// Package service provides business logic for the application.
package service

import "errors"

// Validation errors map to 400.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrThemeRequired    = errors.New("theme is required")
	ErrTitleRequired    = errors.New("title is required")
	ErrStatusRequired   = errors.New("status is required")
	ErrInvalidTaskID    = errors.New("invalid task id")
)

// Conflict and authorization errors.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCallerRequired is returned when an operation needs an identified user
	// and none was resolved for the request.
	ErrCallerRequired = errors.New("caller is required")
)
