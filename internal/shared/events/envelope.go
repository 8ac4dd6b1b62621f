package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Default stream names. Both are overridable through platform config so the
// two registries can be pointed at shared or isolated brokers per environment.
const (
	TopicUserCreated  = "user-created"
	TopicOrderCreated = "order-created"
)

// Envelope is the key+payload unit placed on a topic. The key is the string
// form of the entity identifier and is what upstream infrastructure uses for
// partitioning; the payload is an immutable UTF-8 JSON object.
type Envelope struct {
	Key        string          `json:"key"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// UserCreatedEvent is emitted by the user registry after a user row commits.
type UserCreatedEvent struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// OrderCreatedEvent is emitted by the order registry after an order row commits.
type OrderCreatedEvent struct {
	OrderID  string  `json:"order_id"`
	UserID   string  `json:"user_id"`
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Encode wraps a typed payload in an envelope keyed by the entity id.
func Encode(key string, eventType string, payload any, occurredAt time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		Key:        key,
		Type:       eventType,
		OccurredAt: occurredAt.UTC(),
		Payload:    raw,
	}, nil
}

// Decode unmarshals the envelope payload into out.
func Decode(envelope Envelope, out any) error {
	if err := json.Unmarshal(envelope.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.Type, err)
	}
	return nil
}
