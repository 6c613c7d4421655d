package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearCajaRequest struct {
	Nombre string `json:"nombre" validate:"required"`
	Numero string `json:"numero" validate:"required,numeric"`
}

type AbrirSesionRequest struct {
	CajaID       string          `json:"caja_id" validate:"required,uuid"`
	MontoInicial decimal.Decimal `json:"monto_inicial"`
	Turno        string          `json:"turno" validate:"required"`
}

type MovimientoCajaRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof=retiro gasto ajuste"`
	// MedioPago is optional; an omitted medio means cash.
	MedioPago string          `json:"medio_pago" validate:"omitempty"`
	Monto     decimal.Decimal `json:"monto"`
	Motivo    string          `json:"motivo" validate:"required"`
}

type MedioContadoRequest struct {
	Medio   string          `json:"medio" validate:"required"`
	Contado decimal.Decimal `json:"contado"`
}

type CerrarSesionRequest struct {
	EfectivoContado decimal.Decimal `json:"efectivo_contado"`
	// Medios itemizes every non-cash method counted at close. EFECTIVO has
	// its own dedicated field and may not appear here.
	Medios []MedioContadoRequest `json:"medios" validate:"omitempty,dive"`
}

type HistorialSesionesRequest struct {
	Desde string `form:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Numero    string `json:"numero"`
	Activo    bool   `json:"activo"`
	CreatedAt string `json:"created_at"`
}

type MovimientoCajaResponse struct {
	ID           string          `json:"id"`
	Tipo         string          `json:"tipo"`
	MedioPago    string          `json:"medio_pago"`
	Monto        decimal.Decimal `json:"monto"`
	Motivo       string          `json:"motivo"`
	SaldoAntes   decimal.Decimal `json:"saldo_antes"`
	SaldoDespues decimal.Decimal `json:"saldo_despues"`
	CreatedAt    string          `json:"created_at"`
}

type CierreMedioResponse struct {
	Medio    string          `json:"medio"`
	Esperado decimal.Decimal `json:"esperado"`
	Contado  decimal.Decimal `json:"contado"`
	Desvio   decimal.Decimal `json:"desvio"`
}

type SesionCajaResponse struct {
	ID               string                `json:"id"`
	CajaID           string                `json:"caja_id"`
	Turno            string                `json:"turno"`
	Estado           string                `json:"estado"`
	MontoInicial     decimal.Decimal       `json:"monto_inicial"`
	EfectivoEsperado *decimal.Decimal      `json:"efectivo_esperado,omitempty"`
	EfectivoContado  *decimal.Decimal      `json:"efectivo_contado,omitempty"`
	Desvio           *decimal.Decimal      `json:"desvio,omitempty"`
	Medios           []CierreMedioResponse `json:"medios,omitempty"`
	AbiertaAt        string                `json:"abierta_at"`
	CerradaAt        *string               `json:"cerrada_at,omitempty"`
}

// ResumenSesionResponse is the live snapshot of an open (or closed) session:
// running balance plus the per-method totals accumulated so far.
type ResumenSesionResponse struct {
	Sesion      SesionCajaResponse       `json:"sesion"`
	SaldoActual decimal.Decimal          `json:"saldo_actual"`
	PorMedio    []MedioTotalResponse     `json:"por_medio"`
	Movimientos []MovimientoCajaResponse `json:"movimientos"`
}

type MedioTotalResponse struct {
	Medio string          `json:"medio"`
	Total decimal.Decimal `json:"total"`
}
