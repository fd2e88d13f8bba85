// Package identity talks to the remote identity provider that owns sign-in.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the provider could not be reached (offline, 5xx).
	ErrUnavailable        = errors.New("identity: provider unavailable")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// Session is the provider's view of the current device session.
type Session struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

type Provider interface {
	// Session asks the provider whether the stored session is still valid.
	// A reachable provider that rejects the session returns Session{}, nil.
	Session(ctx context.Context) (Session, error)
	// OnSessionChange registers fn for pushed session changes (sign-in,
	// token refresh, sign-out). The returned func unregisters it.
	OnSessionChange(fn func(Session)) (cancel func())
}
