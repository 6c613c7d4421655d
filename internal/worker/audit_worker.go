package worker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/audit"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/repository"
)

// auditBatchSize bounds how many queued events one Process call drains.
const auditBatchSize = 100

// AuditWorker drains audit events off the Redis queue into audit_logs.
// It is the only writer of that table.
type AuditWorker struct {
	rdb  *redis.Client
	repo repository.AuditRepository
}

func NewAuditWorker(rdb *redis.Client, repo repository.AuditRepository) *AuditWorker {
	return &AuditWorker{rdb: rdb, repo: repo}
}

// Process handles the event BRPOP already popped, then opportunistically
// drains up to auditBatchSize more so bursts land in one batch insert.
func (w *AuditWorker) Process(ctx context.Context, raw string) {
	raws := []string{raw}
	for len(raws) < auditBatchSize {
		next, err := w.rdb.RPop(ctx, audit.Queue).Result()
		if err != nil {
			break // queue drained or Redis unavailable
		}
		raws = append(raws, next)
	}

	logs := make([]model.AuditLog, 0, len(raws))
	for _, r := range raws {
		var ev audit.Event
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			log.Error().Err(err).Msg("audit worker: evento ilegible descartado")
			continue
		}
		logs = append(logs, eventToLog(ev))
	}
	if len(logs) == 0 {
		return
	}

	if err := w.repo.CreateBatch(ctx, logs); err != nil {
		log.Error().Err(err).Int("events", len(logs)).Msg("audit worker: batch insert falló")
		for _, r := range raws {
			SendToDLQ(ctx, w.rdb, audit.Queue, "audit", json.RawMessage(r), err.Error(), 1)
		}
		return
	}
	log.Debug().Int("events", len(logs)).Msg("audit worker: batch persistido")
}

func eventToLog(ev audit.Event) model.AuditLog {
	entry := model.AuditLog{
		TenantID:   ev.TenantID,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID.String(),
		Action:     ev.Action,
		UsuarioID:  ev.UsuarioID,
		CreatedAt:  ev.OccurredAt,
	}
	if len(ev.Before) > 0 {
		s := string(ev.Before)
		entry.Before = &s
	}
	if len(ev.After) > 0 {
		s := string(ev.After)
		entry.After = &s
	}
	if len(ev.Metadata) > 0 {
		s := string(ev.Metadata)
		entry.Metadata = &s
	}
	return entry
}
