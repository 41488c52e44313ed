// Package events carries the audit/notification side-channel. Every mutating
// claim, authorization-code, and payment-batch operation emits one structured
// event. Emission is best-effort: a failed publish is logged and swallowed,
// never surfaced to the caller or allowed to roll back the primary mutation.
package events

import (
	"context"
	"time"
)

// Event is the structured record emitted for each mutating action.
type Event struct {
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	ActorID    string            `json:"actor_id,omitempty"`
	ActorType  string            `json:"actor_type,omitempty"`
	Message    string            `json:"message,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Emitter publishes events to whatever sink is configured. Implementations
// must be safe for concurrent use and must not block request handling beyond
// the publish call itself.
type Emitter interface {
	Emit(ctx context.Context, e Event)
	Close()
}
