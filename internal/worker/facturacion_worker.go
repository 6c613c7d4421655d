package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/infra"
)

// FacturacionWorker emits fiscal documents for confirmed, facturada sales.
// The provider call runs behind the circuit breaker with bounded retries; a
// job that still fails goes to the DLQ for manual inspection.
type FacturacionWorker struct {
	rdb      *redis.Client
	provider infra.FiscalProvider
	breaker  *infra.CircuitBreaker
}

func NewFacturacionWorker(rdb *redis.Client, provider infra.FiscalProvider, breaker *infra.CircuitBreaker) *FacturacionWorker {
	return &FacturacionWorker{rdb: rdb, provider: provider, breaker: breaker}
}

func (w *FacturacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var req infra.FiscalRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		log.Error().Err(err).Msg("facturacion worker: payload inválido")
		return
	}

	var resp *infra.FiscalResponse
	attempts := 0
	err := withRetry(ctx, 3, func(attempt int) error {
		attempts = attempt + 1
		return w.breaker.Execute(func() error {
			r, err := w.provider.Emitir(ctx, req)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
	})
	if err != nil {
		log.Error().Err(err).Str("venta_id", req.VentaID).Msg("facturacion worker: emisión falló")
		SendToDLQ(ctx, w.rdb, QueueFacturacion, "facturacion", raw, err.Error(), attempts)
		return
	}

	log.Info().
		Str("venta_id", req.VentaID).
		Str("comprobante", resp.Comprobante).
		Str("resultado", resp.Resultado).
		Msg("facturacion worker: comprobante emitido")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
