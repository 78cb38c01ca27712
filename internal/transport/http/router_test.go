package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minetrack/internal/activity"
	activityhandler "minetrack/internal/activity/handler"
	"minetrack/internal/auth"
	"minetrack/internal/auth/revocation"
	"minetrack/internal/mine"
	minehandler "minetrack/internal/mine/handler"
	mineservice "minetrack/internal/mine/service"
	"minetrack/internal/user"
	userhandler "minetrack/internal/user/handler"
	userservice "minetrack/internal/user/service"
	"minetrack/pkg/testutil"
)

var discard = slog.New(slog.DiscardHandler)

type testEnv struct {
	router  http.Handler
	mines   *mineservice.Service
	jwt     *auth.JWTService
	healthy bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtService := auth.NewJWTService("test-signing-key", time.Hour)
	revocationList := revocation.NewInMemoryList()

	activityStore := activity.NewInMemoryStore()
	recorder := activity.NewRecorder(activityStore, discard)

	mineSvc := mineservice.New(mine.NewInMemoryStore(), discard, mineservice.WithActivity(recorder))
	userSvc := userservice.New(user.NewInMemoryStore(), jwtService, discard, userservice.WithActivity(recorder))

	env := &testEnv{mines: mineSvc, jwt: jwtService, healthy: true}
	env.router = NewRouter(Deps{
		Mines:      minehandler.New(mineSvc, nil, discard),
		Users:      userhandler.New(userSvc, revocationList, discard),
		Activity:   activityhandler.New(activityStore, discard),
		Validator:  jwtService,
		Revocation: revocationList,
		Health: func(r *http.Request) error {
			if !env.healthy {
				return errors.New("backend down")
			}
			return nil
		},
		Logger: discard,
	})
	return env
}

func (e *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	token, err := e.jwt.Issue("665f1c2e9b3d4a00aaaaaaaa", "Tester", role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedMine(t *testing.T) *mine.Mine {
	t.Helper()
	m, err := e.mines.Create(context.Background(), mine.CreateInput{
		Name:        "East Kalimantan Coal Mine",
		Type:        mine.TypeCoal,
		Coordinates: mine.Coordinates{Lat: -0.5, Lng: 117.15},
		Description: "Open-pit coal operation near the Mahakam river.",
	})
	require.NoError(t, err)
	return m
}

func TestPublicRoutes(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedMine(t)

	rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/mines"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/mines/"+m.ID))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestHealthzReflectsBackend(t *testing.T) {
	env := newTestEnv(t)
	env.healthy = false

	rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestSubmissionRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"name":        "Martabe Gold Mine",
		"type":        "gold",
		"coordinates": map[string]float64{"lat": 1.5, "lng": 99.0},
		"description": "Gold and silver operation in North Sumatra.",
	}

	t.Run("anonymous submission rejected", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/mines", body))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("any authenticated user may submit", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/mines", body)
		req.Header.Set("Authorization", "Bearer "+env.token(t, "user"))
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
	})
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedMine(t)

	adminOnly := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/mines/" + m.ID, map[string]any{"name": "Renamed"}},
		{http.MethodPatch, "/mines/" + m.ID + "/verification", map[string]any{"verified": true}},
		{http.MethodPatch, "/mines/" + m.ID + "/license", map[string]any{"license": "valid"}},
		{http.MethodGet, "/admin/users", nil},
		{http.MethodGet, "/admin/activity", nil},
		{http.MethodDelete, "/mines/" + m.ID, nil},
	}

	t.Run("regular users are forbidden", func(t *testing.T) {
		token := env.token(t, "user")
		for _, route := range adminOnly {
			req := testutil.NewJSONRequest(t, route.method, route.path, route.body)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := testutil.DoRequest(env.router, req)
			testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
		}
	})

	t.Run("admins pass", func(t *testing.T) {
		token := env.token(t, "admin")
		for _, route := range adminOnly {
			req := testutil.NewJSONRequest(t, route.method, route.path, route.body)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := testutil.DoRequest(env.router, req)
			testutil.AssertStatus(t, rr, http.StatusOK)
		}
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// The same token no longer works.
	req = testutil.NewJSONRequest(t, http.MethodPost, "/mines", map[string]any{
		"name":        "Martabe Gold Mine",
		"type":        "gold",
		"coordinates": map[string]float64{"lat": 1.5, "lng": 99.0},
		"description": "Gold and silver operation in North Sumatra.",
	})
	req.Header.Set("Authorization", "Bearer "+token)
	rr = testutil.DoRequest(env.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Budi",
		"email":    "budi@example.com",
		"password": "correct-horse",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "budi@example.com",
		"password": "correct-horse",
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.NotEmpty(t, (*resp)["token"])
}

func TestProfileUpdateFlow(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"name": "Budi Santoso", "email": "budi.santoso@example.com"}

	t.Run("anonymous update rejected", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPatch, "/auth/profile", body))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("authenticated user updates their own profile", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
			"name":     "Budi",
			"email":    "budi@example.com",
			"password": "correct-horse",
		}))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    "budi@example.com",
			"password": "correct-horse",
		}))
		testutil.AssertStatus(t, rr, http.StatusOK)
		login := testutil.UnmarshalResponse[map[string]any](t, rr)
		token, _ := (*login)["token"].(string)
		require.NotEmpty(t, token)

		req := testutil.NewJSONRequest(t, http.MethodPatch, "/auth/profile", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rr = testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		updated := testutil.UnmarshalResponse[user.User](t, rr)
		assert.Equal(t, "Budi Santoso", updated.Name)
		assert.Equal(t, "budi.santoso@example.com", updated.Email)
	})
}

func TestAdminActivityFeed(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedMine(t)
	token := env.token(t, "admin")

	req := testutil.NewJSONRequest(t, http.MethodPatch, "/mines/"+m.ID+"/verification", map[string]any{"verified": true})
	req.Header.Set("Authorization", "Bearer "+token)
	rr := testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	req = testutil.NewRequest(t, http.MethodGet, "/admin/activity")
	req.Header.Set("Authorization", "Bearer "+token)
	rr = testutil.DoRequest(env.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	entries := testutil.UnmarshalResponse[[]activity.Entry](t, rr)
	require.Len(t, *entries, 1)
	assert.Equal(t, activity.ActionApprove, (*entries)[0].Action)
	assert.Equal(t, "Tester", (*entries)[0].AdminName)

	t.Run("bad limit rejected", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/admin/activity?limit=zero")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}
