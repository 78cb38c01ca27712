// Package weatherapi adapts the weatherapi.com current-conditions endpoint to
// the enrichment provider interface. It is the sole place that knows the
// provider's wire shape.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"minetrack/internal/enrichment"
	"minetrack/internal/mine"
)

// requestTimeout bounds the upstream call; expiry is treated like any other
// provider failure by the enrichment service.
const requestTimeout = 5 * time.Second

// Client calls the weatherapi.com REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// currentResponse is the subset of the provider payload this service reads.
type currentResponse struct {
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
		AirQuality *struct {
			CO         float64 `json:"co"`
			NO2        float64 `json:"no2"`
			O3         float64 `json:"o3"`
			SO2        float64 `json:"so2"`
			PM25       float64 `json:"pm2_5"`
			PM10       float64 `json:"pm10"`
			USEPAIndex int     `json:"us-epa-index"`
		} `json:"air_quality"`
	} `json:"current"`
}

// Current fetches the observation for a coordinate pair, requesting air
// quality alongside the weather reading.
func (c *Client) Current(ctx context.Context, lat, lng float64) (*enrichment.Observation, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("aqi", "yes")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	obs := &enrichment.Observation{
		TemperatureC:  payload.Current.TempC,
		ConditionText: payload.Current.Condition.Text,
	}
	if aq := payload.Current.AirQuality; aq != nil {
		obs.AirQuality = &mine.AirQuality{
			PM25:       aq.PM25,
			CO:         aq.CO,
			NO2:        aq.NO2,
			O3:         aq.O3,
			SO2:        aq.SO2,
			USEPAIndex: aq.USEPAIndex,
		}
	}
	return obs, nil
}
