// Package storage persists the single durable token entry. An absent entry
// means logged out.
package storage

import "context"

// TokenStore reads and writes the raw token string. Load returns "" with a
// nil error when no token is stored; Clear is idempotent.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
