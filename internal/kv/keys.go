package kv

import "strconv"

// ThemeKey is the key holding a user's UI theme.
func ThemeKey(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10) + "_theme"
}

// LastLoginKey is the key holding a user's previous login time in epoch milliseconds.
func LastLoginKey(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10) + "_last_login"
}
