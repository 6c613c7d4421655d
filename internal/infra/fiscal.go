package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// FiscalRequest is the emission order the worker builds from a confirmed,
// facturada sale.
type FiscalRequest struct {
	VentaID  string `json:"venta_id"`
	TenantID string `json:"tenant_id"`
	Total    string `json:"total"`
}

// FiscalResponse is the authority's answer.
type FiscalResponse struct {
	Comprobante string `json:"comprobante"`
	Resultado   string `json:"resultado"` // "A" aprobado | "R" rechazado
}

// FiscalProvider emits a fiscal document for a confirmed sale. Real tax
// authority integration is out of scope; deployments plug their own provider.
type FiscalProvider interface {
	Emitir(ctx context.Context, req FiscalRequest) (*FiscalResponse, error)
}

// DummyFiscalProvider approves every request with a synthetic document
// number. It stands in wherever no real provider is configured.
type DummyFiscalProvider struct{}

func (DummyFiscalProvider) Emitir(ctx context.Context, req FiscalRequest) (*FiscalResponse, error) {
	comprobante := fmt.Sprintf("DUMMY-%s-%d", req.VentaID, time.Now().UTC().Unix())
	log.Info().
		Str("venta_id", req.VentaID).
		Str("comprobante", comprobante).
		Msg("fiscal: emisión simulada")
	return &FiscalResponse{Comprobante: comprobante, Resultado: "A"}, nil
}
