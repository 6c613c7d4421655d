package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/audit"
)

const QueueFacturacion = "jobs:facturacion"

// Job is the generic envelope for facturación tasks. Audit events travel on
// their own queue with their own shape (see internal/audit).
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueFacturacion pushes a fiscal emission job to Redis.
func (d *Dispatcher) EnqueueFacturacion(ctx context.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: "facturacion", Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueFacturacion, encoded).Err()
}

// Pool consumes the facturación and audit queues with a fixed set of
// goroutines. Each goroutine blocks on BRPOP, so an idle pool burns no CPU.
type Pool struct {
	rdb    *redis.Client
	audit  *AuditWorker
	fiscal *FacturacionWorker
}

func NewPool(rdb *redis.Client, auditWorker *AuditWorker, fiscalWorker *FacturacionWorker) *Pool {
	return &Pool{rdb: rdb, audit: auditWorker, fiscal: fiscalWorker}
}

// Start launches numWorkers consumer goroutines. They stop when ctx is done.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{audit.Queue, QueueFacturacion}
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	switch queue {
	case audit.Queue:
		p.audit.Process(ctx, raw)
	case QueueFacturacion:
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
			return
		}
		p.fiscal.Process(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Msg("job from unknown queue dropped")
	}
}
