package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogEmitter writes events to the structured log. It is the fallback sink
// when no broker is configured or the broker is unreachable at startup.
type LogEmitter struct {
	logger zerolog.Logger
}

func NewLogEmitter(logger zerolog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(ctx context.Context, ev Event) {
	e.logger.Info().
		Str("action", ev.Action).
		Str("entity_type", ev.EntityType).
		Str("entity_id", ev.EntityID).
		Str("actor_id", ev.ActorID).
		Str("message", ev.Message).
		Msg("audit event")
}

func (e *LogEmitter) Close() {}
