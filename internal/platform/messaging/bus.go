package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

// Stream entry field names. One stream per topic; entries carry the envelope
// flattened into fields so consumers can decode without a second hop.
const (
	fieldKey        = "key"
	fieldType       = "type"
	fieldPayload    = "payload"
	fieldOccurredAt = "occurred_at"
)

// StreamClient is the slice of the Redis API the bus needs. *redis.Client
// satisfies it; tests substitute a fake fed from canned command results.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Publisher appends envelopes to a single topic. The topic is fixed per
// instance; write paths hold one publisher per event type they emit.
type Publisher struct {
	client StreamClient
	topic  string
	logger *slog.Logger
}

func NewPublisher(client StreamClient, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, topic: topic, logger: logger}
}

// Publish blocks until the broker acknowledges the append or fails. A failed
// publish is the caller's failure to surface; there is no retry here and no
// rollback of whatever write preceded it.
func (p *Publisher) Publish(ctx context.Context, key string, payload any) error {
	envelope, err := events.Encode(key, p.topic, payload, time.Now())
	if err != nil {
		return err
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.topic,
		ID:     "*",
		Values: map[string]any{
			fieldKey:        envelope.Key,
			fieldType:       envelope.Type,
			fieldPayload:    string(envelope.Payload),
			fieldOccurredAt: envelope.OccurredAt.UnixNano(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Info("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func decodeEnvelope(values map[string]any) events.Envelope {
	envelope := events.Envelope{}
	if v, ok := values[fieldKey].(string); ok {
		envelope.Key = v
	}
	if v, ok := values[fieldType].(string); ok {
		envelope.Type = v
	}
	if v, ok := values[fieldPayload].(string); ok {
		envelope.Payload = []byte(v)
	}
	switch v := values[fieldOccurredAt].(type) {
	case string:
		var nanos int64
		if _, err := fmt.Sscan(v, &nanos); err == nil {
			envelope.OccurredAt = time.Unix(0, nanos).UTC()
		}
	case int64:
		envelope.OccurredAt = time.Unix(0, v).UTC()
	}
	return envelope
}
