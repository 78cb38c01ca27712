package testutil

import (
	"net/http"

	"minetrack/pkg/requestcontext"
)

// WithAuth adds user identity and role to the request context, simulating what
// the auth middleware does for an authenticated request.
func WithAuth(req *http.Request, userID, name, role string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		ctx = requestcontext.WithUserID(ctx, userID)
	}
	if name != "" {
		ctx = requestcontext.WithUserName(ctx, name)
	}
	if role != "" {
		ctx = requestcontext.WithRole(ctx, role)
	}
	return req.WithContext(ctx)
}

// WithAdmin marks the request as coming from an admin session.
func WithAdmin(req *http.Request, userID, name string) *http.Request {
	return WithAuth(req, userID, name, "admin")
}
