package messaging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

// Handler processes one decoded event. Returning an error drops the event
// after logging; there is no dead-letter queue or redelivery.
type Handler[T any] func(ctx context.Context, key string, event T) error

// Subscriber is a long-running consume loop for one (topic, group) pair,
// parameterized by the payload type it decodes. Messages are fetched and
// handled strictly one at a time, so per-key idempotent handlers stay safe
// under replay. Run exits only on context cancellation; transport errors
// back off and retry.
type Subscriber[T any] struct {
	Client   StreamClient
	Topic    string
	Group    string
	Consumer string
	Handler  Handler[T]
	Logger   *slog.Logger

	// Block bounds each blocking read so cancellation is observed promptly.
	Block time.Duration
}

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Run consumes until ctx is cancelled. The in-flight handler call always
// finishes before the loop returns; no message is fetched after cancellation
// is observed.
func (s *Subscriber[T]) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	block := s.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	consumer := s.Consumer
	if consumer == "" {
		consumer = s.Group + "-1"
	}

	if err := s.ensureGroup(ctx, logger); err != nil {
		return err
	}

	logger.Info("listening to topic",
		"event", "bus_subscribe",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", s.Topic,
		"group", s.Group,
	)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		res, err := s.Client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.Group,
			Consumer: consumer,
			Streams:  []string{s.Topic, ">"},
			Count:    1,
			Block:    block,
		}).Result()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, redis.Nil) {
				// Block timeout with no messages.
				backoff = initialBackoff
				continue
			}
			logger.Error("consume failed, backing off",
				"event", "bus_consume_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", s.Topic,
				"group", s.Group,
				"backoff", backoff.String(),
				"error", err.Error(),
			)
			select {
			case <-time.After(backoff):
				backoff = min(backoff*2, maxBackoff)
			case <-ctx.Done():
				return nil
			}
			continue
		}
		backoff = initialBackoff

		for _, stream := range res {
			for _, msg := range stream.Messages {
				s.dispatch(ctx, logger, msg)
			}
		}
	}
}

// ensureGroup creates the consumer group reading from the start of the
// stream, so a first connect replays full history rather than skipping it.
// Creation failures back off and retry rather than killing the consumer.
func (s *Subscriber[T]) ensureGroup(ctx context.Context, logger *slog.Logger) error {
	backoff := initialBackoff
	for {
		err := s.Client.XGroupCreateMkStream(ctx, s.Topic, s.Group, "0").Err()
		if err == nil || strings.Contains(err.Error(), "BUSYGROUP") {
			return nil
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error("consumer group create failed, backing off",
			"event", "bus_group_create_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", s.Topic,
			"group", s.Group,
			"backoff", backoff.String(),
			"error", err.Error(),
		)
		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxBackoff)
		case <-ctx.Done():
			return nil
		}
	}
}

// dispatch decodes and handles a single entry. Malformed entries and handler
// failures are logged and acknowledged so a bad event never wedges the loop.
func (s *Subscriber[T]) dispatch(ctx context.Context, logger *slog.Logger, msg redis.XMessage) {
	envelope := decodeEnvelope(msg.Values)

	var event T
	if err := events.Decode(envelope, &event); err != nil {
		logger.Warn("discarding malformed message",
			"event", "bus_decode_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", s.Topic,
			"group", s.Group,
			"message_id", msg.ID,
			"error", err.Error(),
		)
		s.ack(ctx, logger, msg.ID)
		return
	}

	if err := s.Handler(ctx, envelope.Key, event); err != nil {
		logger.Error("handler failed, dropping event",
			"event", "bus_handler_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", s.Topic,
			"group", s.Group,
			"message_id", msg.ID,
			"key", envelope.Key,
			"error", err.Error(),
		)
	}
	s.ack(ctx, logger, msg.ID)
}

func (s *Subscriber[T]) ack(ctx context.Context, logger *slog.Logger, id string) {
	if err := s.Client.XAck(ctx, s.Topic, s.Group, id).Err(); err != nil && ctx.Err() == nil {
		logger.Error("ack failed",
			"event", "bus_ack_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", s.Topic,
			"group", s.Group,
			"message_id", id,
			"error", err.Error(),
		)
	}
}
