package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	StockAjusteManual = "ajuste_manual"
	StockMerma        = "merma"
	StockVenta        = "venta"
	StockReversion    = "reversion"
)

// MovimientoStock is an append-only ledger entry. It groups one or more item
// deltas applied atomically with their balance updates. Never updated or
// deleted; corrections create new movements.
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_mov_stock_tenant_sucursal,priority:1"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index:idx_mov_stock_tenant_sucursal,priority:2"`
	Tipo       string    `gorm:"type:varchar(20);not null"`
	Motivo     string    `gorm:"not null"`
	// ReferenciaID links a venta/reversion movement back to its venta.
	ReferenciaID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time

	Items []MovimientoStockItem `gorm:"foreignKey:MovimientoID;constraint:OnDelete:CASCADE"`
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }

// MovimientoStockItem carries the signed delta plus the saldo the ledger
// computed immediately before and after applying it, inside the same
// transaction. Never a stale read.
type MovimientoStockItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MovimientoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad     decimal.Decimal `gorm:"type:decimal(12,3);not null"` // positive = ingreso, negative = egreso
	SaldoAntes   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	SaldoDespues decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoStockItem) TableName() string { return "movimientos_stock_items" }

// StockSaldo is the derived quantity-on-hand per (tenant, sucursal, producto).
// Created lazily at zero the first time a movement touches the product.
// Negative saldo is allowed so a sale can proceed on a stale catalog.
type StockSaldo struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_saldos_key,unique,priority:1"`
	SucursalID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_saldos_key,unique,priority:2"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_saldos_key,unique,priority:3"`
	CantidadActual decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	UpdatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
