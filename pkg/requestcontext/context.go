// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and handlers read them without
// importing net/http. Tests inject them directly:
//
//	ctx = requestcontext.WithUserID(ctx, "665f1c2e9b3d4a0012345678")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	userIDKey    struct{}
	userNameKey  struct{}
	roleKey      struct{}
	tokenIDKey   struct{}
	tokenExpKey  struct{}
	requestIDKey struct{}
	timeKey      struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyUserID    = userIDKey{}
	ContextKeyUserName  = userNameKey{}
	ContextKeyRole      = roleKey{}
	ContextKeyTokenID   = tokenIDKey{}
	ContextKeyTokenExp  = tokenExpKey{}
	ContextKeyRequestID = requestIDKey{}
	ContextKeyTime      = timeKey{}
)

// UserID retrieves the authenticated user ID, or "" if unauthenticated.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyUserID).(string)
	return v
}

// WithUserID injects a user ID into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// UserName retrieves the authenticated user's display name.
func UserName(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyUserName).(string)
	return v
}

// WithUserName injects a display name into the context.
func WithUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyUserName, name)
}

// Role retrieves the authenticated user's role, or "" if unauthenticated.
func Role(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyRole).(string)
	return v
}

// WithRole injects a role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

// TokenID retrieves the JWT ID of the presented access token.
func TokenID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyTokenID).(string)
	return v
}

// WithTokenID injects a JWT ID into the context.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, ContextKeyTokenID, jti)
}

// TokenExpiry retrieves the expiry of the presented access token, or the zero
// time when no token is present.
func TokenExpiry(ctx context.Context) time.Time {
	v, _ := ctx.Value(ContextKeyTokenExp).(time.Time)
	return v
}

// WithTokenExpiry injects a token expiry into the context.
func WithTokenExpiry(ctx context.Context, exp time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyTokenExp, exp)
}

// RequestID retrieves the correlation ID assigned by middleware.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyRequestID).(string)
	return v
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now returns the request-scoped time when one was injected, falling back to
// the wall clock. Services use this so tests control timestamps.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ContextKeyTime).(time.Time); ok {
		return v
	}
	return time.Now().UTC()
}

// WithTime pins the request-scoped clock, for tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyTime, t)
}
