package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minetrack/internal/enrichment"
	"minetrack/internal/enrichment/weatherapi"
	"minetrack/internal/mine"
	"minetrack/internal/mine/service"
	"minetrack/pkg/testutil"
)

var discard = slog.New(slog.DiscardHandler)

func newTestRouter(t *testing.T, enricher *enrichment.Service) (chi.Router, *service.Service) {
	t.Helper()
	svc := service.New(mine.NewInMemoryStore(), discard)
	h := New(svc, enricher, discard)

	r := chi.NewRouter()
	r.Post("/mines", h.HandleCreate)
	r.Get("/mines", h.HandleList)
	r.Get("/mines/{id}", h.HandleGet)
	r.Put("/mines/{id}", h.HandleUpdate)
	r.Delete("/mines/{id}", h.HandleDelete)
	r.Patch("/mines/{id}/verification", h.HandleSetVerification)
	r.Patch("/mines/{id}/license", h.HandleSetLicense)
	return r, svc
}

func createTestMine(t *testing.T, svc *service.Service) *mine.Mine {
	t.Helper()
	m, err := svc.Create(context.Background(), mine.CreateInput{
		Name:        "East Kalimantan Coal Mine",
		Type:        mine.TypeCoal,
		Coordinates: mine.Coordinates{Lat: -0.5, Lng: 117.15},
		Description: "Open-pit coal operation near the Mahakam river.",
	})
	require.NoError(t, err)
	return m
}

func TestHandleCreate(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	t.Run("creates with defaults applied", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/mines", map[string]any{
			"name":        "Martabe Gold Mine",
			"type":        "Gold",
			"coordinates": map[string]float64{"lat": 1.5, "lng": 99.0},
			"description": "Gold and silver operation in North Sumatra.",
			"verified":    true,
			"license":     "valid",
		})
		req = testutil.WithAuth(req, "665f1c2e9b3d4a00bbbbbbbb", "Budi", "user")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		created := testutil.UnmarshalResponse[mine.Mine](t, rr)
		assert.Equal(t, "Martabe Gold Mine", created.Name)
		assert.Equal(t, mine.TypeGold, created.Type)
		// Smuggled governance fields are ignored.
		assert.False(t, created.Verified)
		assert.Equal(t, mine.LicensePending, created.License)
	})

	t.Run("rejects invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mines", nil)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("rejects invalid submission", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/mines", map[string]any{
			"name":        "X",
			"type":        "diamond",
			"coordinates": map[string]float64{"lat": 0, "lng": 0},
			"description": "A perfectly fine description of the site.",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}

func TestHandleList(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	m := createTestMine(t, svc)

	t.Run("returns all mines", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[[]*mine.Mine](t, rr)
		require.Len(t, *got, 1)
		assert.Equal(t, m.ID, (*got)[0].ID)
	})

	t.Run("filter value all is a no-op", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines?type=all&license=all&verified=all"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[[]*mine.Mine](t, rr)
		assert.Len(t, *got, 1)
	})

	t.Run("search and type filters apply", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines?search=kalimantan&type=coal"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[[]*mine.Mine](t, rr)
		assert.Len(t, *got, 1)

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines?type=gold"))
		got = testutil.UnmarshalResponse[[]*mine.Mine](t, rr)
		assert.Empty(t, *got)
	})

	t.Run("rejects unknown filter values", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines?type=diamond"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines?verified=maybe"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}

func TestHandleGet(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	m := createTestMine(t, svc)

	t.Run("returns the mine", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines/"+m.ID))
		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[mine.Mine](t, rr)
		assert.Equal(t, m.ID, got.ID)
		assert.Nil(t, got.Environmental)
	})

	t.Run("malformed id is a validation error", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines/not-an-id"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines/665f1c2e9b3d4a0012345678"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestHandleGetEnrichesWhenProviderDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	enricher := enrichment.New(weatherapi.New(upstream.URL, "test-key"), discard)
	router, svc := newTestRouter(t, enricher)
	m := createTestMine(t, svc)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines/"+m.ID))
	testutil.AssertStatus(t, rr, http.StatusOK)

	got := testutil.UnmarshalResponse[mine.Mine](t, rr)
	require.NotNil(t, got.Environmental)
	assert.True(t, got.Environmental.Degraded)
	assert.Equal(t, "Sunny", got.Environmental.Weather.ConditionText)
	assert.Equal(t, float64(28), got.Environmental.Weather.TemperatureC)
}

func TestHandleListEnrichOptIn(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temp_c":31.5,"condition":{"text":"Partly cloudy"}}}`))
	}))
	defer upstream.Close()

	enricher := enrichment.New(weatherapi.New(upstream.URL, "test-key"), discard)
	router, svc := newTestRouter(t, enricher)
	createTestMine(t, svc)

	t.Run("list without enrich has no snapshot", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines"))
		got := testutil.UnmarshalResponse[[]*mine.Mine](t, rr)
		require.Len(t, *got, 1)
		assert.Nil(t, (*got)[0].Environmental)
	})

	t.Run("list with enrich carries snapshots", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines?enrich=true"))
		got := testutil.UnmarshalResponse[[]*mine.Mine](t, rr)
		require.Len(t, *got, 1)
		require.NotNil(t, (*got)[0].Environmental)
		assert.False(t, (*got)[0].Environmental.Degraded)
		assert.Equal(t, "Partly cloudy", (*got)[0].Environmental.Weather.ConditionText)
	})
}

func TestHandleUpdate(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	m := createTestMine(t, svc)

	t.Run("applies partial edit", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/mines/"+m.ID, map[string]any{
			"name": "Renamed Coal Mine",
		})
		req = testutil.WithAdmin(req, "665f1c2e9b3d4a00aaaaaaaa", "Admin")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[mine.Mine](t, rr)
		assert.Equal(t, "Renamed Coal Mine", got.Name)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/mines/"+m.ID, map[string]any{
			"type": "diamond",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}

func TestHandleSetVerification(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	m := createTestMine(t, svc)

	t.Run("verifies", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/mines/"+m.ID+"/verification", map[string]any{
			"verified": true,
		})
		req = testutil.WithAdmin(req, "665f1c2e9b3d4a00aaaaaaaa", "Admin")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[mine.Mine](t, rr)
		assert.True(t, got.Verified)
	})

	t.Run("missing flag is a bad request", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/mines/"+m.ID+"/verification", map[string]any{})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestHandleSetLicense(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	m := createTestMine(t, svc)

	t.Run("advances the lifecycle", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/mines/"+m.ID+"/license", map[string]any{
			"license": "valid",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[mine.Mine](t, rr)
		assert.Equal(t, mine.LicenseValid, got.License)
	})

	t.Run("rejects non-adjacent jumps", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/mines/"+m.ID+"/license", map[string]any{
			"license": "expired",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invariant_violation")
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/mines/"+m.ID+"/license", map[string]any{
			"license": "revoked",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}

func TestHandleDelete(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	m := createTestMine(t, svc)

	req := testutil.WithAdmin(testutil.NewRequest(t, http.MethodDelete, "/mines/"+m.ID), "665f1c2e9b3d4a00aaaaaaaa", "Admin")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/mines/"+m.ID))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
