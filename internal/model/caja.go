package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sesion estados.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// Turnos válidos para una sesión de caja.
const (
	TurnoManana = "MANANA"
	TurnoTarde  = "TARDE"
	TurnoNoche  = "NOCHE"
)

// Tipos de movimiento de caja.
const (
	CajaRetiro    = "retiro"
	CajaGasto     = "gasto"
	CajaAjuste    = "ajuste"
	CajaVenta     = "venta"
	CajaAnulacion = "anulacion"
)

// MedioEfectivo is the reserved payment method: cash has its own dedicated
// field at cierre and may not appear in the itemized medios list.
const MedioEfectivo = "EFECTIVO"

// Caja is a physical register within a sucursal.
type Caja struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_cajas_tenant_sucursal,priority:1"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index:idx_cajas_tenant_sucursal,priority:2"`
	Nombre     string    `gorm:"not null"`
	Numero     string    `gorm:"type:varchar(10);not null"`
	Activo     bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
}

// SesionCaja is one open-to-close shift of a register. At most one sesión
// abierta per caja, enforced at open time.
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SucursalID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CajaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Turno        string          `gorm:"type:varchar(10);not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	// Cierre fields, set once on close.
	EfectivoContado  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EfectivoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Desvio           *decimal.Decimal `gorm:"type:decimal(12,2)"`
	AbiertaAt        time.Time
	CerradaAt        *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
	Medios      []SesionCierreMedio `gorm:"foreignKey:SesionCajaID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// MovimientoCaja is an immutable event in the cash ledger. Sign policy:
// retiro/gasto are stored negative, venta positive, ajuste as given,
// anulacion carries the inverse of the settled payment.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	MedioPago    string          `gorm:"type:varchar(30);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo       string          `gorm:"not null"`
	SaldoAntes   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoDespues decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// ReferenciaID links venta/anulacion movements back to the venta.
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

// SesionCierreMedio is the per-method reconciliation row persisted at cierre:
// what the ledger expected vs. what the cashier counted.
type SesionCierreMedio struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Medio        string          `gorm:"type:varchar(30);not null"`
	Esperado     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Contado      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desvio       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (SesionCierreMedio) TableName() string { return "sesiones_caja_cierre_medios" }
