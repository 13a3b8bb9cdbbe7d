package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nexarq/taskmanager/internal/kv"
	"github.com/nexarq/taskmanager/internal/model"
)

// KV is the key-value collaborator holding preferences.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	GetWithDefault(ctx context.Context, key, def string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// Preferences reads and writes per-user theme and last-login values.
// There is no transactional coupling with the relational store.
type Preferences struct {
	kv KV
}

// NewPreferences creates a Preferences store.
func NewPreferences(store KV) *Preferences {
	return &Preferences{kv: store}
}

// Load returns the user's theme (default "light") and last login.
// LastLogin is nil when the user has never logged in. A stored value that
// cannot be parsed is treated as absent.
func (p *Preferences) Load(ctx context.Context, userID int64) (model.Preferences, error) {
	prefs := model.Preferences{Theme: model.DefaultTheme}

	theme, err := p.kv.GetWithDefault(ctx, kv.ThemeKey(userID), model.DefaultTheme)
	if err != nil {
		return prefs, fmt.Errorf("load theme: %w", err)
	}
	if theme != "" {
		prefs.Theme = theme
	}

	raw, found, err := p.kv.Get(ctx, kv.LastLoginKey(userID))
	if err != nil {
		return prefs, fmt.Errorf("load last login: %w", err)
	}
	if found {
		if ms, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			ts := time.UnixMilli(ms).UTC()
			prefs.LastLogin = &ts
		}
	}

	return prefs, nil
}

// RecordLogin stores now as the user's last login, in epoch milliseconds.
func (p *Preferences) RecordLogin(ctx context.Context, userID int64, now time.Time) error {
	if err := p.kv.Put(ctx, kv.LastLoginKey(userID), strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// SetTheme overwrites the theme only.
func (p *Preferences) SetTheme(ctx context.Context, userID int64, theme string) error {
	if theme == "" {
		return ErrThemeRequired
	}
	if err := p.kv.Put(ctx, kv.ThemeKey(userID), theme); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}
