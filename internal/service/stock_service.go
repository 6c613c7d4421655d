package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/apierror"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/audit"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/dto"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/repository"
)

type StockService interface {
	RegistrarMovimiento(ctx context.Context, rc RequestContext, req dto.RegistrarMovimientoStockRequest, now time.Time) (*dto.MovimientoStockResponse, error)
	GetSaldos(ctx context.Context, rc RequestContext, search string) ([]dto.SaldoResponse, error)
	GetMovimientos(ctx context.Context, rc RequestContext, req dto.MovimientoStockFilterRequest) (*dto.MovimientoStockListResponse, error)
	// ApplySaleEgressTx and ApplySaleReversalTx run inside the sale's own
	// transaction. One movement item per sale line; egress on confirm,
	// full restock on void. The created movement carries the saldo each item
	// observed before and after, for the caller's audit trail.
	ApplySaleEgressTx(tx *gorm.DB, rc RequestContext, venta *model.Venta, now time.Time) (*model.MovimientoStock, error)
	ApplySaleReversalTx(tx *gorm.DB, rc RequestContext, venta *model.Venta, now time.Time) (*model.MovimientoStock, error)
}

type stockService struct {
	repo         repository.StockRepository
	productoRepo repository.ProductoRepository
	recorder     audit.Recorder
}

func NewStockService(repo repository.StockRepository, productoRepo repository.ProductoRepository, recorder audit.Recorder) StockService {
	return &stockService{repo: repo, productoRepo: productoRepo, recorder: recorder}
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual movements: ajuste_manual (either direction) and merma (egress only).
// Movement, items y saldo updates commit atomically; each item records the
// saldo the ledger computed immediately before and after applying its delta.

func (s *stockService) RegistrarMovimiento(ctx context.Context, rc RequestContext, req dto.RegistrarMovimientoStockRequest, now time.Time) (*dto.MovimientoStockResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	if req.Tipo != model.StockAjusteManual && req.Tipo != model.StockMerma {
		return nil, apierror.ValidationField("tipo", "Tipo de movimiento inválido.")
	}
	if req.Motivo == "" {
		return nil, apierror.ValidationField("motivo", "El motivo es obligatorio.")
	}
	if len(req.Items) == 0 {
		return nil, apierror.ValidationField("items", "El movimiento requiere al menos un item.")
	}

	type resolvedItem struct {
		producto *model.Producto
		delta    decimal.Decimal
	}
	resolved := make([]resolvedItem, 0, len(req.Items))
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if !item.Cantidad.IsPositive() {
			return nil, apierror.ValidationField(field+".cantidad", "La cantidad debe ser mayor a cero.")
		}
		if item.Direccion != "ingreso" && item.Direccion != "egreso" {
			return nil, apierror.ValidationField(field+".direccion", "Dirección inválida.")
		}
		if req.Tipo == model.StockMerma && item.Direccion != "egreso" {
			return nil, apierror.ValidationField(field+".direccion", "Una merma solo admite egresos.")
		}
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, apierror.ValidationField(field+".producto_id", "Identificador de producto inválido.")
		}
		p, err := s.productoRepo.FindByID(ctx, rc.TenantID, pid)
		if err != nil {
			return nil, apierror.ValidationField(field+".producto_id",
				fmt.Sprintf("Producto %s no encontrado.", item.ProductoID))
		}
		delta := item.Cantidad
		if item.Direccion == "egreso" {
			delta = delta.Neg()
		}
		resolved = append(resolved, resolvedItem{producto: p, delta: delta})
	}

	mov := &model.MovimientoStock{
		TenantID:   rc.TenantID,
		SucursalID: rc.SucursalID,
		Tipo:       req.Tipo,
		Motivo:     req.Motivo,
		CreatedAt:  now,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, r := range resolved {
			saldo, err := s.repo.GetSaldoForUpdateTx(tx, rc.TenantID, rc.SucursalID, r.producto.ID)
			if err != nil {
				return err
			}
			antes := saldo.CantidadActual
			saldo.CantidadActual = antes.Add(r.delta)
			if err := s.repo.SaveSaldoTx(tx, saldo); err != nil {
				return err
			}
			mov.Items = append(mov.Items, model.MovimientoStockItem{
				ProductoID:   r.producto.ID,
				Cantidad:     r.delta,
				SaldoAntes:   antes,
				SaldoDespues: saldo.CantidadActual,
			})
		}
		return s.repo.CreateMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "MovimientoStock",
		EntityID:   mov.ID,
		Action:     audit.ActionAdjust,
		UsuarioID:  rc.UsuarioID,
		After:      audit.Snapshot(mov),
		OccurredAt: now,
	})

	resp := movimientoStockToResponse(mov)
	for i, r := range resolved {
		resp.Items[i].Producto = r.producto.Nombre
	}
	return resp, nil
}

// ── Sale-driven movements ─────────────────────────────────────────────────────

func (s *stockService) ApplySaleEgressTx(tx *gorm.DB, rc RequestContext, venta *model.Venta, now time.Time) (*model.MovimientoStock, error) {
	return s.applySaleTx(tx, rc, venta, model.StockVenta,
		fmt.Sprintf("Venta %s", venta.ID), now, true)
}

func (s *stockService) ApplySaleReversalTx(tx *gorm.DB, rc RequestContext, venta *model.Venta, now time.Time) (*model.MovimientoStock, error) {
	return s.applySaleTx(tx, rc, venta, model.StockReversion,
		fmt.Sprintf("Anulación venta %s", venta.ID), now, false)
}

func (s *stockService) applySaleTx(tx *gorm.DB, rc RequestContext, venta *model.Venta, tipo, motivo string, now time.Time, egress bool) (*model.MovimientoStock, error) {
	ref := venta.ID
	mov := &model.MovimientoStock{
		TenantID:     rc.TenantID,
		SucursalID:   rc.SucursalID,
		Tipo:         tipo,
		Motivo:       motivo,
		ReferenciaID: &ref,
		CreatedAt:    now,
	}
	for _, item := range venta.Items {
		delta := item.Cantidad
		if egress {
			delta = delta.Neg()
		}
		saldo, err := s.repo.GetSaldoForUpdateTx(tx, rc.TenantID, rc.SucursalID, item.ProductoID)
		if err != nil {
			return nil, err
		}
		antes := saldo.CantidadActual
		saldo.CantidadActual = antes.Add(delta)
		if err := s.repo.SaveSaldoTx(tx, saldo); err != nil {
			return nil, err
		}
		mov.Items = append(mov.Items, model.MovimientoStockItem{
			ProductoID:   item.ProductoID,
			Cantidad:     delta,
			SaldoAntes:   antes,
			SaldoDespues: saldo.CantidadActual,
		})
	}
	if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *stockService) GetSaldos(ctx context.Context, rc RequestContext, search string) ([]dto.SaldoResponse, error) {
	if err := rc.EnsureTenant(); err != nil {
		return nil, err
	}
	if err := rc.EnsureSucursal(); err != nil {
		return nil, err
	}
	saldos, err := s.repo.ListSaldos(ctx, rc.TenantID, rc.SucursalID, search)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	out := make([]dto.SaldoResponse, 0, len(saldos))
	for _, sd := range saldos {
		resp := dto.SaldoResponse{
			ProductoID:     sd.ProductoID.String(),
			CantidadActual: sd.CantidadActual,
		}
		if sd.Producto != nil {
			resp.Producto = sd.Producto.Nombre
			resp.CodigoBarras = sd.Producto.CodigoBarras
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *stockService) GetMovimientos(ctx context.Context, rc RequestContext, req dto.MovimientoStockFilterRequest) (*dto.MovimientoStockListResponse, error) {
	if err := rc.EnsureTenant(); err != nil {
		return nil, err
	}
	if err := rc.EnsureSucursal(); err != nil {
		return nil, err
	}

	filter := repository.MovimientoStockFilter{
		Tipo:  req.Tipo,
		Page:  req.Page,
		Limit: req.Limit,
	}
	if req.ProductoID != "" {
		pid, err := uuid.Parse(req.ProductoID)
		if err != nil {
			return nil, apierror.ValidationField("producto_id", "Identificador de producto inválido.")
		}
		filter.ProductoID = &pid
	}
	desde, hasta, err := parseRango(req.Desde, req.Hasta)
	if err != nil {
		return nil, err
	}
	filter.Desde = desde
	filter.Hasta = hasta

	movs, total, err := s.repo.ListMovimientos(ctx, rc.TenantID, rc.SucursalID, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	data := make([]dto.MovimientoStockResponse, 0, len(movs))
	for i := range movs {
		data = append(data, *movimientoStockToResponse(&movs[i]))
	}
	return &dto.MovimientoStockListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// parseRango validates a desde/hasta date pair (YYYY-MM-DD, inclusive) and
// rejects an inverted range.
func parseRango(desdeStr, hastaStr string) (*time.Time, *time.Time, error) {
	var desde, hasta *time.Time
	if desdeStr != "" {
		t, err := time.Parse("2006-01-02", desdeStr)
		if err != nil {
			return nil, nil, apierror.ValidationField("desde", "Fecha inválida, se espera YYYY-MM-DD.")
		}
		desde = &t
	}
	if hastaStr != "" {
		t, err := time.Parse("2006-01-02", hastaStr)
		if err != nil {
			return nil, nil, apierror.ValidationField("hasta", "Fecha inválida, se espera YYYY-MM-DD.")
		}
		// Inclusive end of day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		hasta = &end
	}
	if desde != nil && hasta != nil && hasta.Before(*desde) {
		return nil, nil, apierror.ValidationField("hasta", "El rango de fechas es inválido.")
	}
	return desde, hasta, nil
}

func movimientoStockToResponse(m *model.MovimientoStock) *dto.MovimientoStockResponse {
	items := make([]dto.MovimientoStockItemResponse, 0, len(m.Items))
	for _, item := range m.Items {
		r := dto.MovimientoStockItemResponse{
			ProductoID:   item.ProductoID.String(),
			Cantidad:     item.Cantidad,
			SaldoAntes:   item.SaldoAntes,
			SaldoDespues: item.SaldoDespues,
		}
		if item.Producto != nil {
			r.Producto = item.Producto.Nombre
		}
		items = append(items, r)
	}
	resp := &dto.MovimientoStockResponse{
		ID:        m.ID.String(),
		Tipo:      m.Tipo,
		Motivo:    m.Motivo,
		Items:     items,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
	if m.ReferenciaID != nil {
		ref := m.ReferenciaID.String()
		resp.ReferenciaID = &ref
	}
	return resp
}
