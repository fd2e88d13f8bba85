package models

import "time"

// AuthCacheFreshness bounds how long a cached login is trusted offline.
const AuthCacheFreshness = 7 * 24 * time.Hour

// UserAuthState is published by the auth state manager.
// LoggedIn is nil until the first check completes.
type UserAuthState struct {
	Loading         bool  `json:"loading"`
	LoggedIn        *bool `json:"logged_in"`
	FullyRegistered bool  `json:"fully_registered"`
}

func InitialAuthState() UserAuthState {
	return UserAuthState{Loading: true}
}

// IsLoggedIn treats an undetermined state as logged out.
func (s UserAuthState) IsLoggedIn() bool {
	return s.LoggedIn != nil && *s.LoggedIn
}

// CachedAuthRecord is the last known login persisted on the device.
type CachedAuthRecord struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	LoggedIn        bool   `json:"logged_in"`
	LastWriteTimeMs int64  `json:"last_write_time_ms"`
}

// FreshAt reports whether the record is younger than AuthCacheFreshness at now.
func (r CachedAuthRecord) FreshAt(now time.Time) bool {
	age := now.UnixMilli() - r.LastWriteTimeMs
	return age < AuthCacheFreshness.Milliseconds()
}
