package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de promoción. The pricing engine dispatches on these tags; an
// unrecognized tag is simply ignored so a buggy record never blocks a sale.
const (
	PromoPorcentajeCategoria = "porcentaje_categoria"
	PromoDosPorUno           = "dos_por_uno"
	PromoCombo               = "combo"
)

// Promocion is a read-only input to the pricing engine. The sale flow never
// mutates the promotion catalog.
type Promocion struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo     string    `gorm:"type:varchar(30);not null"`
	Nombre   string    `gorm:"not null"`
	// Scope: either a category or an explicit product set, depending on Tipo.
	Categoria *string
	// Type-specific parameters.
	Porcentaje         *decimal.Decimal `gorm:"type:decimal(5,2)"` // porcentaje_categoria
	CantidadRequerida  *int             // dos_por_uno: pay N-1 of every N
	PrecioCombo        *decimal.Decimal `gorm:"type:decimal(12,2)"` // combo: bundle price
	VigenciaDesde      time.Time        `gorm:"not null"`
	VigenciaHasta      time.Time        `gorm:"not null"`
	Activa             bool             `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Productos []PromocionProducto `gorm:"foreignKey:PromocionID;constraint:OnDelete:CASCADE"`
}

func (Promocion) TableName() string { return "promociones" }

// PromocionProducto pins a promotion to an explicit product (combo / 2x1 scope).
type PromocionProducto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromocionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID  uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (PromocionProducto) TableName() string { return "promociones_productos" }
