package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Queue is the Redis list the recorder pushes to and the worker pool
// consumes from.
const Queue = "jobs:auditoria"

// Actions recorded against mutated entities.
const (
	ActionCreate  = "Create"
	ActionUpdate  = "Update"
	ActionDelete  = "Delete"
	ActionConfirm = "Confirm"
	ActionCancel  = "Cancel"
	ActionAdjust  = "Adjust"
	ActionClose   = "Close"
)

// Event is one audit entry as it travels through the queue. Before and
// After hold the JSON snapshots of the entity around the mutation.
type Event struct {
	TenantID   uuid.UUID       `json:"tenant_id"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Action     string          `json:"action"`
	UsuarioID  uuid.UUID       `json:"usuario_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Recorder enqueues audit events. Recording is best effort: a failed
// Record must never fail the business operation that produced it.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

type redisRecorder struct {
	client *redis.Client
}

// NewRedisRecorder returns a Recorder backed by a Redis list. Events are
// serialized to JSON and pushed; the worker pool drains them into the
// audit_logs table.
func NewRedisRecorder(client *redis.Client) Recorder {
	return &redisRecorder{client: client}
}

func (r *redisRecorder) Record(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).
			Str("entity_type", ev.EntityType).
			Str("action", ev.Action).
			Msg("auditoría: no se pudo serializar el evento")
		return
	}
	if err := r.client.LPush(ctx, Queue, payload).Err(); err != nil {
		log.Error().Err(err).
			Str("entity_type", ev.EntityType).
			Str("entity_id", ev.EntityID.String()).
			Str("action", ev.Action).
			Msg("auditoría: no se pudo encolar el evento")
	}
}

// Snapshot marshals an entity for the Before/After fields. A marshal
// failure degrades to a null snapshot rather than dropping the event.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Msg("auditoría: snapshot inválido")
		return nil
	}
	return b
}

// NopRecorder discards events. Used in tests and when Redis is not
// configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
