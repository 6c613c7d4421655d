// Package pricing evaluates active promotions against a cart line and
// produces the adjusted unit price. Evaluation is pure: no I/O, no clock
// reads. The caller resolves which promotions are active "now" and passes
// them in. Called once per cart recomputation.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// CartLine is the accumulated cart state a cross-item promotion (combo)
// needs to see. It includes the line currently being priced.
type CartLine struct {
	ProductoID uuid.UUID
	Categoria  string
	Cantidad   decimal.Decimal
	PrecioBase decimal.Decimal
}

// Context is everything a strategy may look at to price one line.
type Context struct {
	ProductoID uuid.UUID
	Categoria  string
	Cantidad   decimal.Decimal
	PrecioBase decimal.Decimal
	Carrito    []CartLine
}

// Result reports whether a promotion applied and the resulting pricing.
// CantidadPrecioLleno is the portion of Cantidad charged at full rate
// (the 2x1 split); it equals Cantidad when no promotion applied.
type Result struct {
	Aplicada            bool
	PromocionID         uuid.UUID
	PromocionTipo       string
	PrecioUnitario      decimal.Decimal
	CantidadPrecioLleno decimal.Decimal
}

// Strategy evaluates promotions of exactly one tipo.
type Strategy interface {
	Tipo() string
	Apply(promo model.Promocion, ctx Context) Result
}

// Engine dispatches over a fixed strategy list. Precedence is the
// registration order: the first applicable promotion wins, and promotions of
// an earlier-registered tipo beat later ones regardless of resulting price.
type Engine struct {
	strategies []Strategy
}

// NewEngine registers the built-in strategies in their fixed precedence
// order: porcentaje por categoría, dos por uno, combo.
func NewEngine() *Engine {
	return &Engine{strategies: []Strategy{
		PorcentajeCategoriaStrategy{},
		DosPorUnoStrategy{},
		ComboStrategy{},
	}}
}

// Evaluate prices one line against the active promotions. Promotions with a
// tipo no strategy handles are ignored; a buggy promotion record must never
// block a sale. Within one tipo, promotions are tried in slice order, so the
// result is deterministic for identical inputs.
func (e *Engine) Evaluate(promos []model.Promocion, ctx Context) Result {
	for _, s := range e.strategies {
		for _, p := range promos {
			if p.Tipo != s.Tipo() {
				continue
			}
			if r := s.Apply(p, ctx); r.Aplicada {
				return r
			}
		}
	}
	return Result{
		Aplicada:            false,
		PrecioUnitario:      ctx.PrecioBase,
		CantidadPrecioLleno: ctx.Cantidad,
	}
}

// noMatch is the shared negative result strategies return.
func noMatch(ctx Context) Result {
	return Result{PrecioUnitario: ctx.PrecioBase, CantidadPrecioLleno: ctx.Cantidad}
}

// targetsProducto reports whether the promotion's explicit product set
// contains the product.
func targetsProducto(promo model.Promocion, productoID uuid.UUID) bool {
	for _, pp := range promo.Productos {
		if pp.ProductoID == productoID {
			return true
		}
	}
	return false
}
