package ports

import "context"

// TokenStore persists the bearer token across process restarts. Only the
// token crosses restarts; the profile is always re-fetched.
type TokenStore interface {
	// Load returns the persisted token, or "" when no record exists.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
