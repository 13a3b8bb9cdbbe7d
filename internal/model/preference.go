package model

import "time"

// DefaultTheme is reported when a user has never stored a theme.
const DefaultTheme = "light"

// Preferences is the per-user session data merged into the login response.
type Preferences struct {
	Theme string
	// LastLogin is nil on the first login.
	LastLogin *time.Time
}
