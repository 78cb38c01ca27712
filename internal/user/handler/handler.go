// Package handler exposes account registration, login and user administration.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"minetrack/internal/auth/revocation"
	"minetrack/internal/transport/http/shared"
	"minetrack/internal/user"
	"minetrack/internal/user/service"
	dErrors "minetrack/pkg/domain-errors"
	"minetrack/pkg/requestcontext"
)

type Handler struct {
	users      *service.Service
	revocation revocation.List
	logger     *slog.Logger
}

func New(users *service.Service, revocation revocation.List, logger *slog.Logger) *Handler {
	return &Handler{users: users, revocation: revocation, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// HandleRegister creates a new account with the default role.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	u, err := h.users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, "registration failed")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, u)
}

// HandleLogin verifies credentials and issues a token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	token, u, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, "login failed")
		return
	}
	shared.WriteJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

// HandleLogout revokes the caller's token for its remaining lifetime.
// Without a revocation backend logout is a no-op acknowledged to the client.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jti := requestcontext.TokenID(ctx)
	if h.revocation != nil && jti != "" {
		ttl := time.Until(requestcontext.TokenExpiry(ctx))
		if ttl > 0 {
			if err := h.revocation.Revoke(ctx, jti, ttl); err != nil {
				h.logger.ErrorContext(ctx, "failed to revoke token",
					"error", err.Error(),
					"request_id", requestcontext.RequestID(ctx),
				)
				shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "logout failed"))
				return
			}
		}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "logged out",
	})
}

// HandleUpdateProfile changes the caller's own name and email. The target
// account is always the authenticated identity; there is no way to edit
// someone else's profile here.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := requestcontext.UserID(ctx)
	if id == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.users.UpdateProfile(ctx, id, req.Name, req.Email)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update profile")
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

// HandleListUsers lists all accounts for the admin console.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.users.List(ctx)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list users")
		return
	}
	shared.WriteJSON(w, http.StatusOK, users)
}

// HandleUpdateRole promotes or demotes an account.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	updated, err := h.users.UpdateRole(ctx, chi.URLParam(r, "id"), role)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update role")
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	switch code {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"error", err.Error(),
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	shared.WriteError(w, err)
}
