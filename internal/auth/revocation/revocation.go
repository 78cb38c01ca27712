// Package revocation tracks revoked token IDs so logout takes effect before
// token expiry.
package revocation

import (
	"context"
	"time"
)

// List records revoked token IDs until their natural expiry.
type List interface {
	// Revoke marks a token ID revoked for the remaining token lifetime.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether a token ID has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
