// Package http assembles the service routes and middleware chain.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activityhandler "minetrack/internal/activity/handler"
	minehandler "minetrack/internal/mine/handler"
	"minetrack/internal/platform/middleware"
	"minetrack/internal/transport/http/shared"
	userhandler "minetrack/internal/user/handler"
)

const requestTimeout = 30 * time.Second

// Deps collects everything the router mounts.
type Deps struct {
	Mines      *minehandler.Handler
	Users      *userhandler.Handler
	Activity   *activityhandler.Handler
	Validator  middleware.JWTValidator
	Revocation middleware.TokenRevocationChecker
	Health     func(r *http.Request) error
	Logger     *slog.Logger
}

// NewRouter wires the public, authenticated and admin route groups.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.Health != nil {
			if err := d.Health(req); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public catalog and account endpoints.
	r.Get("/mines", d.Mines.HandleList)
	r.Get("/mines/{id}", d.Mines.HandleGet)
	r.Post("/auth/register", d.Users.HandleRegister)
	r.Post("/auth/login", d.Users.HandleLogin)

	// Any authenticated user.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Validator, d.Revocation, d.Logger))

		r.Post("/mines", d.Mines.HandleCreate)
		r.Post("/auth/logout", d.Users.HandleLogout)
		r.Patch("/auth/profile", d.Users.HandleUpdateProfile)

		// Admin console.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", d.Logger))

			r.Put("/mines/{id}", d.Mines.HandleUpdate)
			r.Delete("/mines/{id}", d.Mines.HandleDelete)
			r.Patch("/mines/{id}/verification", d.Mines.HandleSetVerification)
			r.Patch("/mines/{id}/license", d.Mines.HandleSetLicense)
			r.Get("/admin/users", d.Users.HandleListUsers)
			r.Patch("/admin/users/{id}/role", d.Users.HandleUpdateRole)
			r.Get("/admin/activity", d.Activity.HandleListRecent)
		})
	})

	return r
}
