package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the catalog entry the sale flow resolves scans against.
// Catalog CRUD lives outside this core; ventas only read it.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index:idx_productos_tenant_codigo,unique,priority:1"`
	CodigoBarras string    `gorm:"not null;index:idx_productos_tenant_codigo,unique,priority:2"`
	// CodigoAlt is the secondary scan code (internal SKU) some tenants use.
	CodigoAlt   *string         `gorm:"index"`
	Nombre      string          `gorm:"index;not null"`
	Categoria   string          `gorm:"not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
