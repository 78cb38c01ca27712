package weatherapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"current": {
		"temp_c": 29.3,
		"condition": {"text": "Patchy rain nearby", "icon": "//cdn.weatherapi.com/113.png"},
		"air_quality": {
			"co": 230.5, "no2": 4.1, "o3": 62.0, "so2": 1.9,
			"pm2_5": 18.6, "pm10": 24.0, "us-epa-index": 2
		}
	}
}`

func TestCurrentParsesObservation(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"key": q.Get("key"),
			"q":   q.Get("q"),
			"aqi": q.Get("aqi"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	obs, err := c.Current(context.Background(), -6.2, 106.8)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotQuery["key"])
	assert.Equal(t, "-6.2,106.8", gotQuery["q"])
	assert.Equal(t, "yes", gotQuery["aqi"])

	assert.Equal(t, 29.3, obs.TemperatureC)
	assert.Equal(t, "Patchy rain nearby", obs.ConditionText)
	require.NotNil(t, obs.AirQuality)
	assert.Equal(t, 18.6, obs.AirQuality.PM25)
	assert.Equal(t, 2, obs.AirQuality.USEPAIndex)
}

func TestCurrentWithoutAirQuality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temp_c":15.0,"condition":{"text":"Overcast"}}}`))
	}))
	defer srv.Close()

	obs, err := New(srv.URL, "k").Current(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Nil(t, obs.AirQuality)
}

func TestCurrentErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":2006}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "bad-key").Current(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCurrentMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k").Current(context.Background(), 0, 0)
	require.Error(t, err)
}

func TestCurrentRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, "k").Current(ctx, 0, 0)
	require.Error(t, err)
}
