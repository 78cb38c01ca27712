// Package enrichment attaches live weather and air-quality readings to mine
// records at read time.
//
// The contract is fail-open: Enrich never returns an error. When the upstream
// provider is unreachable the caller still gets a snapshot-shaped value - by
// default the fixed fallback reading, marked Degraded so integrators can tell
// placeholder data from live data. Mine data correctness is hard-fail
// elsewhere; decorative weather data is not worth failing a page over.
package enrichment

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"minetrack/internal/mine"
	"minetrack/internal/platform/metrics"
	"minetrack/pkg/requestcontext"
)

// Observation is a normalized reading from the weather provider.
type Observation struct {
	TemperatureC  float64
	ConditionText string
	AirQuality    *mine.AirQuality
}

// Provider fetches the current observation for a coordinate pair.
type Provider interface {
	Current(ctx context.Context, lat, lng float64) (*Observation, error)
}

// Mode selects what a failed lookup produces.
type Mode int

const (
	// ModeFallback substitutes the fixed placeholder snapshot on failure.
	ModeFallback Mode = iota
	// ModeOmit leaves the snapshot off the record on failure.
	ModeOmit
)

// enrichParallelism bounds concurrent provider calls in EnrichMany.
const enrichParallelism = 8

// Service performs read-time enrichment. Snapshots are built fresh per call
// and never cached or persisted.
type Service struct {
	provider Provider
	mode     Mode
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithMode(m Mode) Option {
	return func(s *Service) { s.mode = m }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(provider Provider, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{provider: provider, mode: ModeFallback, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fallbackSnapshot mirrors the placeholder reading shown when the provider is
// down: a sunny 28°C with good air quality.
func fallbackSnapshot() *mine.EnvironmentalSnapshot {
	return &mine.EnvironmentalSnapshot{
		Weather: mine.WeatherReading{
			TemperatureC:  28,
			ConditionText: "Sunny",
		},
		AirQuality: &mine.AirQuality{
			PM25:       10,
			CO:         0.8,
			NO2:        12,
			O3:         25,
			SO2:        8,
			USEPAIndex: 1,
		},
		Degraded: true,
	}
}

// Enrich returns a copy of m annotated with an environmental snapshot. The
// stored record is untouched. Exactly one outbound call is made; any failure
// takes the degraded path instead of propagating.
func (s *Service) Enrich(ctx context.Context, m *mine.Mine) *mine.Mine {
	enriched := m.Clone()

	start := time.Now()
	obs, err := s.provider.Current(ctx, m.Coordinates.Lat, m.Coordinates.Lng)
	s.metrics.ObserveEnrichment(time.Since(start), err != nil)

	if err != nil {
		s.logger.WarnContext(ctx, "weather lookup failed, using fallback",
			"error", err,
			"mine_id", m.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.mode == ModeOmit {
			return enriched
		}
		enriched.Environmental = fallbackSnapshot()
		return enriched
	}

	enriched.Environmental = &mine.EnvironmentalSnapshot{
		Weather: mine.WeatherReading{
			TemperatureC:  obs.TemperatureC,
			ConditionText: obs.ConditionText,
		},
		AirQuality: obs.AirQuality,
	}
	return enriched
}

// EnrichMany enriches each mine independently, fanning provider calls out in
// parallel. One element's failure never affects its siblings; the fail-open
// contract holds per element.
func (s *Service) EnrichMany(ctx context.Context, mines []*mine.Mine) []*mine.Mine {
	out := make([]*mine.Mine, len(mines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichParallelism)
	for i, m := range mines {
		g.Go(func() error {
			out[i] = s.Enrich(ctx, m)
			return nil
		})
	}
	// Enrich never errors, so Wait only synchronizes.
	_ = g.Wait()

	return out
}
