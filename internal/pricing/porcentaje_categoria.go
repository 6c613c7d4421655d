package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

var cien = decimal.NewFromInt(100)

// PorcentajeCategoriaStrategy applies a flat percentage discount to every
// product of the promotion's category.
type PorcentajeCategoriaStrategy struct{}

func (PorcentajeCategoriaStrategy) Tipo() string { return model.PromoPorcentajeCategoria }

func (PorcentajeCategoriaStrategy) Apply(promo model.Promocion, ctx Context) Result {
	if promo.Categoria == nil || promo.Porcentaje == nil {
		return noMatch(ctx)
	}
	if !strings.EqualFold(*promo.Categoria, ctx.Categoria) {
		return noMatch(ctx)
	}
	pct := *promo.Porcentaje
	if pct.LessThanOrEqual(decimal.Zero) || pct.GreaterThan(cien) {
		return noMatch(ctx)
	}

	factor := cien.Sub(pct).Div(cien)
	return Result{
		Aplicada:            true,
		PromocionID:         promo.ID,
		PromocionTipo:       promo.Tipo,
		PrecioUnitario:      ctx.PrecioBase.Mul(factor).Round(2),
		CantidadPrecioLleno: ctx.Cantidad,
	}
}
