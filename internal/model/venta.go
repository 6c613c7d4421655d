package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta estados. Transitions only move forward:
// borrador → confirmada, borrador → anulada, confirmada → anulada.
const (
	VentaBorrador   = "borrador"
	VentaConfirmada = "confirmada"
	VentaAnulada    = "anulada"
)

// Venta is a single customer ticket. Items are mutable only while the venta
// is still borrador; confirmation freezes them and stamps pagos y totales.
type Venta struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index:idx_ventas_tenant_sucursal,priority:1"`
	SucursalID  uuid.UUID `gorm:"type:uuid;not null;index:idx_ventas_tenant_sucursal,priority:2"`
	UsuarioID   uuid.UUID `gorm:"type:uuid;not null"`
	ListaPrecio string    `gorm:"not null;default:'Minorista'"`
	Estado      string    `gorm:"type:varchar(20);not null;default:'borrador'"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Facturada is only set at confirmation time; the caller must state it
	// explicitly, there is no silent default.
	Facturada *bool
	// SesionCajaID records which cash session settled the sale.
	SesionCajaID    *uuid.UUID `gorm:"type:uuid"`
	MotivoAnulacion *string
	ConfirmadaAt    *time.Time
	AnuladaAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []VentaItem `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
	Pagos []VentaPago `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

// VentaItem is one line of the ticket: one row per product, re-scanning the
// same product increments Cantidad instead of duplicating the line.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_venta_items_venta_producto,unique,priority:1"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_venta_items_venta_producto,unique,priority:2"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PromocionID records which promotion adjusted PrecioUnitario, if any.
	PromocionID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// VentaPago is one payment line stamped at confirmation. Immutable.
type VentaPago struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MedioPago string          `gorm:"type:varchar(30);not null"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}
