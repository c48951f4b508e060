package model

import "time"

// Identity is the authenticated requester, derived from access token claims.
// The zero value is an anonymous requester.
type Identity struct {
	UserID   int64
	Username string

	// TokenID and TokenExpiresAt describe the access token the request was
	// made with, so logout can revoke it.
	TokenID        string
	TokenExpiresAt time.Time
}

// Authenticated reports whether the identity belongs to a real user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}
