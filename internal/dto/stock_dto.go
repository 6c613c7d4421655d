package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovimientoStockItemRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	// Direccion gives the delta its sign: ingreso = +cantidad, egreso = -cantidad.
	Direccion string `json:"direccion" validate:"required,oneof=ingreso egreso"`
}

type RegistrarMovimientoStockRequest struct {
	Tipo   string                       `json:"tipo"   validate:"required,oneof=ajuste_manual merma"`
	Motivo string                       `json:"motivo" validate:"required"`
	Items  []MovimientoStockItemRequest `json:"items"  validate:"required,min=1,dive"`
}

type MovimientoStockFilterRequest struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=ajuste_manual merma venta reversion"`
	Desde      string `form:"desde"       validate:"omitempty,datetime=2006-01-02"`
	Hasta      string `form:"hasta"       validate:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoStockItemResponse struct {
	ProductoID   string          `json:"producto_id"`
	Producto     string          `json:"producto"`
	Cantidad     decimal.Decimal `json:"cantidad"`
	SaldoAntes   decimal.Decimal `json:"saldo_antes"`
	SaldoDespues decimal.Decimal `json:"saldo_despues"`
}

type MovimientoStockResponse struct {
	ID           string                        `json:"id"`
	Tipo         string                        `json:"tipo"`
	Motivo       string                        `json:"motivo"`
	ReferenciaID *string                       `json:"referencia_id,omitempty"`
	Items        []MovimientoStockItemResponse `json:"items"`
	CreatedAt    string                        `json:"created_at"`
}

type MovimientoStockListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

type SaldoResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	CodigoBarras   string          `json:"codigo_barras"`
	CantidadActual decimal.Decimal `json:"cantidad_actual"`
}
