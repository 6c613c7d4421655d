package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// ComboStrategy prices a fixed bundle: when every product of the combo is
// present in the cart, each combo unit is sold at PrecioCombo, allocated to
// the member lines in proportion to their base prices. Units beyond the
// completed combos stay at full price.
type ComboStrategy struct{}

func (ComboStrategy) Tipo() string { return model.PromoCombo }

func (ComboStrategy) Apply(promo model.Promocion, ctx Context) Result {
	if promo.PrecioCombo == nil || len(promo.Productos) == 0 {
		return noMatch(ctx)
	}
	if !targetsProducto(promo, ctx.ProductoID) {
		return noMatch(ctx)
	}

	// Combos completed = the scarcest member's whole-unit count.
	// The member lines' base prices are summed to apportion PrecioCombo.
	combos := decimal.Zero
	sumBases := decimal.Zero
	for i, pp := range promo.Productos {
		line, ok := findLine(ctx.Carrito, pp)
		if !ok {
			return noMatch(ctx)
		}
		disponible := line.Cantidad.Floor()
		if i == 0 || disponible.LessThan(combos) {
			combos = disponible
		}
		sumBases = sumBases.Add(line.PrecioBase)
	}
	if combos.IsZero() || sumBases.IsZero() {
		return noMatch(ctx)
	}

	// This line's share of one combo, proportional to its base price.
	share := promo.PrecioCombo.Mul(ctx.PrecioBase).Div(sumBases)

	cubiertas := combos
	if cubiertas.GreaterThan(ctx.Cantidad) {
		cubiertas = ctx.Cantidad
	}
	restantes := ctx.Cantidad.Sub(cubiertas)
	total := share.Mul(cubiertas).Add(ctx.PrecioBase.Mul(restantes))
	precio := total.Div(ctx.Cantidad).Round(2)

	return Result{
		Aplicada:            true,
		PromocionID:         promo.ID,
		PromocionTipo:       promo.Tipo,
		PrecioUnitario:      precio,
		CantidadPrecioLleno: restantes,
	}
}

func findLine(carrito []CartLine, pp model.PromocionProducto) (CartLine, bool) {
	for _, l := range carrito {
		if l.ProductoID == pp.ProductoID && l.Cantidad.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return l, true
		}
	}
	return CartLine{}, false
}
