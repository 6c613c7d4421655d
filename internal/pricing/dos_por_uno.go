package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// DosPorUnoStrategy implements buy-N-get-one-free ("2x1" when N=2): of every
// N units in the line, one is free. Only whole groups earn a free unit;
// fractional quantities below a full group pay full price.
type DosPorUnoStrategy struct{}

func (DosPorUnoStrategy) Tipo() string { return model.PromoDosPorUno }

func (s DosPorUnoStrategy) Apply(promo model.Promocion, ctx Context) Result {
	if !s.matches(promo, ctx) {
		return noMatch(ctx)
	}

	requerida := 2
	if promo.CantidadRequerida != nil && *promo.CantidadRequerida >= 2 {
		requerida = *promo.CantidadRequerida
	}

	grupos := ctx.Cantidad.Div(decimal.NewFromInt(int64(requerida))).Floor()
	if grupos.IsZero() {
		return noMatch(ctx)
	}

	pagadas := ctx.Cantidad.Sub(grupos) // one free unit per full group
	// Effective unit price spreads the freebies across the whole line.
	precio := ctx.PrecioBase.Mul(pagadas).Div(ctx.Cantidad).Round(2)

	return Result{
		Aplicada:            true,
		PromocionID:         promo.ID,
		PromocionTipo:       promo.Tipo,
		PrecioUnitario:      precio,
		CantidadPrecioLleno: pagadas,
	}
}

func (DosPorUnoStrategy) matches(promo model.Promocion, ctx Context) bool {
	if targetsProducto(promo, ctx.ProductoID) {
		return true
	}
	return promo.Categoria != nil && strings.EqualFold(*promo.Categoria, ctx.Categoria)
}
