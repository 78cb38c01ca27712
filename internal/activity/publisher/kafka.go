// Package publisher emits activity entries to Kafka for downstream consumers
// (alerting, long-term audit retention). Delivery is best-effort: a produce
// failure is logged and counted, never surfaced to the admin operation.
package publisher

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/twmb/franz-go/pkg/kgo"

	"minetrack/internal/activity"
)

var publishFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "minetrack_activity_publish_failures_total",
	Help: "Total number of activity entries that failed to publish to Kafka",
})

// Kafka publishes activity entries to a topic.
type Kafka struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafka connects a producer. Returns nil if no brokers are configured.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}
	return &Kafka{client: client, logger: logger}, nil
}

// Publish produces one entry asynchronously, keyed by target so actions on the
// same record stay ordered within a partition.
func (k *Kafka) Publish(ctx context.Context, e activity.Entry) {
	value, err := json.Marshal(e)
	if err != nil {
		publishFailures.Inc()
		k.logger.ErrorContext(ctx, "failed to encode activity entry", "error", err)
		return
	}

	record := &kgo.Record{Key: []byte(e.TargetID), Value: value}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			publishFailures.Inc()
			k.logger.Error("failed to publish activity entry",
				"error", err,
				"entry_id", e.ID,
			)
		}
	})
}

// Close flushes pending records and releases the producer.
func (k *Kafka) Close() {
	if k == nil {
		return
	}
	k.client.Close()
}
