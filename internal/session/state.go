// Package session owns the process-wide authentication state: the bearer
// token, the identity derived from it, and the expiration watchdog. All
// mutation funnels through the store; everything else observes snapshots.
package session

import (
	"context"

	"github.com/anurag9179/smartcashbook.client/internal/permissions"
)

// User is the identity derived from the token claims. It is recomputed from
// the token on every state change and never stored independently.
type User struct {
	ID       string
	Username string
	Email    string
	Role     permissions.Role
}

// State is an immutable snapshot of the session. Authenticated is true iff
// a token is present and was not expired at the last check.
type State struct {
	Token            string
	User             *User
	Authenticated    bool
	ExpiringSoon     bool
	MinutesRemaining int
}

// Result is the discriminated outcome of Login and RefreshToken. Err holds
// a human-readable message when OK is false.
type Result struct {
	OK  bool
	Err string
}

// AuthAPI is the slice of the backend client the store needs.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Refresh(ctx context.Context, current string) (string, error)
}
