package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type IniciarVentaRequest struct {
	ListaPrecio string `json:"lista_precio" validate:"omitempty,max=40"`
}

type AgregarItemCodigoRequest struct {
	Codigo string `json:"codigo" validate:"required"`
}

type AgregarItemProductoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
}

type ActualizarItemRequest struct {
	Cantidad decimal.Decimal `json:"cantidad"`
}

type PagoVentaRequest struct {
	MedioPago string          `json:"medio_pago" validate:"required"`
	Monto     decimal.Decimal `json:"monto"`
}

type ConfirmarVentaRequest struct {
	// Pagos may be empty: fiado and courtesy sales settle without payment.
	Pagos        []PagoVentaRequest `json:"pagos"          validate:"omitempty,dive"`
	SesionCajaID *string            `json:"sesion_caja_id" validate:"omitempty,uuid"`
	// Facturada must be stated explicitly; a missing field is a validation
	// error, never a silent false.
	Facturada *bool `json:"facturada" validate:"required"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaItemResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	PromocionID    *string         `json:"promocion_id,omitempty"`
}

type PagoVentaResponse struct {
	MedioPago string          `json:"medio_pago"`
	Monto     decimal.Decimal `json:"monto"`
}

type VentaResponse struct {
	ID              string              `json:"id"`
	Estado          string              `json:"estado"`
	ListaPrecio     string              `json:"lista_precio"`
	Total           decimal.Decimal     `json:"total"`
	Facturada       *bool               `json:"facturada,omitempty"`
	MotivoAnulacion *string             `json:"motivo_anulacion,omitempty"`
	SesionCajaID    *string             `json:"sesion_caja_id,omitempty"`
	Items           []VentaItemResponse `json:"items"`
	Pagos           []PagoVentaResponse `json:"pagos"`
	CreatedAt       string              `json:"created_at"`
	ConfirmadaAt    *string             `json:"confirmada_at,omitempty"`
	AnuladaAt       *string             `json:"anulada_at,omitempty"`
}

// AgregarItemResponse reports whether the scan created a new line or
// incremented an existing one, with the quantity around the mutation.
type AgregarItemResponse struct {
	Creado          bool              `json:"creado"`
	CantidadAntes   decimal.Decimal   `json:"cantidad_antes"`
	CantidadDespues decimal.Decimal   `json:"cantidad_despues"`
	Item            VentaItemResponse `json:"item"`
	Total           decimal.Decimal   `json:"total"`
}
