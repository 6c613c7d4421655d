package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/apierror"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/audit"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/dto"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/pricing"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/repository"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/worker"
)

type VentaService interface {
	Iniciar(ctx context.Context, rc RequestContext, req dto.IniciarVentaRequest, now time.Time) (*dto.VentaResponse, error)
	AgregarItemPorCodigo(ctx context.Context, rc RequestContext, ventaID uuid.UUID, codigo string, now time.Time) (*dto.AgregarItemResponse, error)
	AgregarItemPorProducto(ctx context.Context, rc RequestContext, ventaID, productoID uuid.UUID, now time.Time) (*dto.AgregarItemResponse, error)
	ActualizarItem(ctx context.Context, rc RequestContext, ventaID, itemID uuid.UUID, cantidad decimal.Decimal, now time.Time) (*dto.VentaResponse, error)
	QuitarItem(ctx context.Context, rc RequestContext, ventaID, itemID uuid.UUID, now time.Time) (*dto.VentaResponse, error)
	Confirmar(ctx context.Context, rc RequestContext, ventaID uuid.UUID, req dto.ConfirmarVentaRequest, now time.Time) (*dto.VentaResponse, error)
	Anular(ctx context.Context, rc RequestContext, ventaID uuid.UUID, motivo string, now time.Time) (*dto.VentaResponse, error)
	GetByID(ctx context.Context, rc RequestContext, ventaID uuid.UUID) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	pricing      PricingService
	engine       *pricing.Engine
	stock        StockService
	caja         CajaService
	recorder     audit.Recorder
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	pricingSvc PricingService,
	stock StockService,
	caja CajaService,
	recorder audit.Recorder,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		pricing:      pricingSvc,
		engine:       pricing.NewEngine(),
		stock:        stock,
		caja:         caja,
		recorder:     recorder,
		dispatcher:   dispatcher,
	}
}

// ── Iniciar ───────────────────────────────────────────────────────────────────

func (s *ventaService) Iniciar(ctx context.Context, rc RequestContext, req dto.IniciarVentaRequest, now time.Time) (*dto.VentaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	lista := strings.TrimSpace(req.ListaPrecio)
	if lista == "" {
		lista = "Minorista"
	}
	venta := &model.Venta{
		TenantID:    rc.TenantID,
		SucursalID:  rc.SucursalID,
		UsuarioID:   rc.UsuarioID,
		ListaPrecio: lista,
		Estado:      model.VentaBorrador,
		Total:       decimal.Zero,
		CreatedAt:   now,
	}
	if err := s.repo.Create(ctx, venta); err != nil {
		return nil, apierror.Internal(err)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "Venta",
		EntityID:   venta.ID,
		Action:     audit.ActionCreate,
		UsuarioID:  rc.UsuarioID,
		After:      audit.Snapshot(venta),
		OccurredAt: now,
	})
	return ventaToResponse(venta), nil
}

// ── Agregar item ──────────────────────────────────────────────────────────────
// One line per product: re-scanning increments the existing line by one.
// Every mutation reprices the whole cart so cross-item promotions (combo)
// see the final composition.

func (s *ventaService) AgregarItemPorCodigo(ctx context.Context, rc RequestContext, ventaID uuid.UUID, codigo string, now time.Time) (*dto.AgregarItemResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, apierror.ValidationField("codigo", "El código es obligatorio.")
	}
	producto, err := s.productoRepo.FindByCodigo(ctx, rc.TenantID, codigo)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("Producto con código %s no encontrado.", codigo))
	}
	return s.agregarItem(ctx, rc, ventaID, producto, now)
}

func (s *ventaService) AgregarItemPorProducto(ctx context.Context, rc RequestContext, ventaID, productoID uuid.UUID, now time.Time) (*dto.AgregarItemResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	producto, err := s.productoRepo.FindByID(ctx, rc.TenantID, productoID)
	if err != nil {
		return nil, notFoundOr(err, "Producto no encontrado.")
	}
	return s.agregarItem(ctx, rc, ventaID, producto, now)
}

func (s *ventaService) agregarItem(ctx context.Context, rc RequestContext, ventaID uuid.UUID, producto *model.Producto, now time.Time) (*dto.AgregarItemResponse, error) {
	if !producto.Activo {
		return nil, apierror.ValidationField("producto_id",
			fmt.Sprintf("El producto %s está inactivo.", producto.Nombre))
	}
	promos, err := s.pricing.ActivePromos(ctx, rc.TenantID, now)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	var (
		venta           *model.Venta
		target          *model.VentaItem
		creado          bool
		cantidadAntes   decimal.Decimal
		cantidadDespues decimal.Decimal
	)

	// The venta is loaded under the row lock so two concurrent scans of the
	// same draft cannot lose an increment.
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.findBorradorForUpdateTx(tx, rc, ventaID)
		if err != nil {
			return err
		}
		idx := -1
		for i := range venta.Items {
			if venta.Items[i].ProductoID == producto.ID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			target = &venta.Items[idx]
			cantidadAntes = target.Cantidad
			target.Cantidad = target.Cantidad.Add(decimal.NewFromInt(1))
		} else {
			creado = true
			venta.Items = append(venta.Items, model.VentaItem{
				VentaID:        venta.ID,
				ProductoID:     producto.ID,
				Cantidad:       decimal.NewFromInt(1),
				PrecioUnitario: producto.PrecioVenta,
				Subtotal:       producto.PrecioVenta,
				Producto:       producto,
				CreatedAt:      now,
			})
			target = &venta.Items[len(venta.Items)-1]
			if err := s.repo.CreateItemTx(tx, target); err != nil {
				return err
			}
		}
		cantidadDespues = target.Cantidad
		return s.repriceTx(tx, venta, promos)
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	action := audit.ActionUpdate
	if creado {
		action = audit.ActionCreate
	}
	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "VentaItem",
		EntityID:   target.ID,
		Action:     action,
		UsuarioID:  rc.UsuarioID,
		After:      audit.Snapshot(target),
		Metadata: audit.Snapshot(map[string]string{
			"venta_id":         venta.ID.String(),
			"cantidad_antes":   cantidadAntes.String(),
			"cantidad_despues": cantidadDespues.String(),
		}),
		OccurredAt: now,
	})

	itemResp := ventaItemToResponse(target)
	itemResp.Producto = producto.Nombre
	return &dto.AgregarItemResponse{
		Creado:          creado,
		CantidadAntes:   cantidadAntes,
		CantidadDespues: cantidadDespues,
		Item:            itemResp,
		Total:           venta.Total,
	}, nil
}

// ── ActualizarItem / QuitarItem ───────────────────────────────────────────────

func (s *ventaService) ActualizarItem(ctx context.Context, rc RequestContext, ventaID, itemID uuid.UUID, cantidad decimal.Decimal, now time.Time) (*dto.VentaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	if cantidad.IsNegative() {
		return nil, apierror.ValidationField("cantidad", "La cantidad no puede ser negativa.")
	}
	promos, err := s.pricing.ActivePromos(ctx, rc.TenantID, now)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	var (
		venta    *model.Venta
		before   model.VentaItem
		after    model.VentaItem
		removido bool
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.findBorradorForUpdateTx(tx, rc, ventaID)
		if err != nil {
			return err
		}
		idx := indexOfItem(venta, itemID)
		if idx < 0 {
			return apierror.NotFound("Item no encontrado.")
		}
		before = venta.Items[idx]

		// Cantidad 0 is a removal, with the same downstream effects as QuitarItem.
		if cantidad.IsZero() {
			removido = true
			return s.removeItemTx(tx, venta, idx, promos)
		}
		venta.Items[idx].Cantidad = cantidad
		if err := s.repriceTx(tx, venta, promos); err != nil {
			return err
		}
		after = venta.Items[idx]
		return nil
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	if removido {
		s.recordItemRemoved(ctx, rc, venta, &before, now)
	} else {
		s.recorder.Record(ctx, audit.Event{
			TenantID:   rc.TenantID,
			EntityType: "VentaItem",
			EntityID:   after.ID,
			Action:     audit.ActionUpdate,
			UsuarioID:  rc.UsuarioID,
			Before:     audit.Snapshot(&before),
			After:      audit.Snapshot(&after),
			OccurredAt: now,
		})
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) QuitarItem(ctx context.Context, rc RequestContext, ventaID, itemID uuid.UUID, now time.Time) (*dto.VentaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	promos, err := s.pricing.ActivePromos(ctx, rc.TenantID, now)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	var (
		venta   *model.Venta
		removed model.VentaItem
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.findBorradorForUpdateTx(tx, rc, ventaID)
		if err != nil {
			return err
		}
		idx := indexOfItem(venta, itemID)
		if idx < 0 {
			return apierror.NotFound("Item no encontrado.")
		}
		removed = venta.Items[idx]
		return s.removeItemTx(tx, venta, idx, promos)
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	s.recordItemRemoved(ctx, rc, venta, &removed, now)
	return ventaToResponse(venta), nil
}

// findBorradorForUpdateTx loads the venta under the row lock and rejects
// anything past the draft state.
func (s *ventaService) findBorradorForUpdateTx(tx *gorm.DB, rc RequestContext, ventaID uuid.UUID) (*model.Venta, error) {
	venta, err := s.repo.FindByIDForUpdateTx(tx, rc.TenantID, rc.SucursalID, ventaID)
	if err != nil {
		return nil, notFoundOr(err, "Venta no encontrada.")
	}
	if venta.Estado != model.VentaBorrador {
		return nil, apierror.Conflict("Solo se puede modificar una venta en borrador.")
	}
	return venta, nil
}

func indexOfItem(venta *model.Venta, itemID uuid.UUID) int {
	for i := range venta.Items {
		if venta.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (s *ventaService) removeItemTx(tx *gorm.DB, venta *model.Venta, idx int, promos []model.Promocion) error {
	if err := s.repo.DeleteItemTx(tx, venta.Items[idx].ID); err != nil {
		return err
	}
	venta.Items = append(venta.Items[:idx], venta.Items[idx+1:]...)
	return s.repriceTx(tx, venta, promos)
}

func (s *ventaService) recordItemRemoved(ctx context.Context, rc RequestContext, venta *model.Venta, removed *model.VentaItem, now time.Time) {
	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "VentaItem",
		EntityID:   removed.ID,
		Action:     audit.ActionDelete,
		UsuarioID:  rc.UsuarioID,
		Before:     audit.Snapshot(removed),
		Metadata: audit.Snapshot(map[string]string{
			"venta_id": venta.ID.String(),
		}),
		OccurredAt: now,
	})
}

// ── Confirmar ─────────────────────────────────────────────────────────────────
// One atomic unit: stock egress, caja settlement, pago rows y status flip.
// Nothing survives a failed confirmation.

func (s *ventaService) Confirmar(ctx context.Context, rc RequestContext, ventaID uuid.UUID, req dto.ConfirmarVentaRequest, now time.Time) (*dto.VentaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	if req.Facturada == nil {
		return nil, apierror.ValidationField("facturada", "Debe indicar si la venta es facturada.")
	}
	// An empty payment list is legal (fiado, courtesy); each listed payment
	// still has to be well formed.
	pagos := make([]model.VentaPago, 0, len(req.Pagos))
	for i, p := range req.Pagos {
		field := fmt.Sprintf("pagos[%d]", i)
		medio := normalizarMedio(p.MedioPago)
		if medio == "" {
			return nil, apierror.ValidationField(field+".medio_pago", "El medio de pago es obligatorio.")
		}
		if !p.Monto.IsPositive() {
			return nil, apierror.ValidationField(field+".monto", "El monto debe ser mayor a cero.")
		}
		pagos = append(pagos, model.VentaPago{MedioPago: medio, Monto: p.Monto})
	}
	var sesionID *uuid.UUID
	if req.SesionCajaID != nil {
		id, err := uuid.Parse(*req.SesionCajaID)
		if err != nil {
			return nil, apierror.ValidationField("sesion_caja_id", "Identificador de sesión inválido.")
		}
		sesionID = &id
	}

	var (
		venta       *model.Venta
		estadoAntes string
		stockMov    *model.MovimientoStock
		cajaMovs    []model.MovimientoCaja
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.repo.FindByIDForUpdateTx(tx, rc.TenantID, rc.SucursalID, ventaID)
		if err != nil {
			return notFoundOr(err, "Venta no encontrada.")
		}
		switch venta.Estado {
		case model.VentaConfirmada:
			return apierror.Conflict("La venta ya está confirmada.")
		case model.VentaAnulada:
			return apierror.Conflict("La venta está anulada.")
		}
		if len(venta.Items) == 0 {
			return apierror.ValidationField("items", "La venta no tiene items.")
		}
		estadoAntes = venta.Estado

		stockMov, err = s.stock.ApplySaleEgressTx(tx, rc, venta, now)
		if err != nil {
			return err
		}

		for i := range pagos {
			pagos[i].VentaID = venta.ID
			if err := s.repo.CreatePagoTx(tx, &pagos[i]); err != nil {
				return err
			}
		}
		venta.Pagos = pagos

		sesionUsada, movs, err := s.caja.SettleSaleTx(tx, rc, sesionID, venta, now)
		if err != nil {
			return err
		}
		cajaMovs = movs

		venta.Estado = model.VentaConfirmada
		venta.Facturada = req.Facturada
		venta.SesionCajaID = &sesionUsada
		venta.ConfirmadaAt = &now
		return s.repo.SaveTx(tx, venta)
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "Venta",
		EntityID:   venta.ID,
		Action:     audit.ActionConfirm,
		UsuarioID:  rc.UsuarioID,
		Before:     audit.Snapshot(map[string]string{"estado": estadoAntes}),
		After:      audit.Snapshot(venta),
		OccurredAt: now,
	})
	s.recordLedgerEvents(ctx, rc, venta, stockMov, cajaMovs, now)

	// Fiscal emission is async and best effort; the sale is already committed.
	if *req.Facturada && s.dispatcher != nil {
		payload := map[string]interface{}{
			"venta_id":  venta.ID.String(),
			"tenant_id": rc.TenantID.String(),
			"total":     venta.Total.String(),
		}
		_ = s.dispatcher.EnqueueFacturacion(ctx, payload)
	}
	return ventaToResponse(venta), nil
}

// ── Anular ────────────────────────────────────────────────────────────────────
// Voiding a confirmed sale reverses exactly what confirmation did: full
// restock per line plus inverse caja movements. A still-borrador sale flips
// state only; there is nothing in the ledgers to undo.

func (s *ventaService) Anular(ctx context.Context, rc RequestContext, ventaID uuid.UUID, motivo string, now time.Time) (*dto.VentaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, apierror.ValidationField("motivo", "El motivo de anulación es obligatorio.")
	}

	var (
		venta       *model.Venta
		estadoAntes string
		stockMov    *model.MovimientoStock
		cajaMovs    []model.MovimientoCaja
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		venta, err = s.repo.FindByIDForUpdateTx(tx, rc.TenantID, rc.SucursalID, ventaID)
		if err != nil {
			return notFoundOr(err, "Venta no encontrada.")
		}
		if venta.Estado == model.VentaAnulada {
			return apierror.Conflict("La venta ya está anulada.")
		}
		estadoAntes = venta.Estado

		if venta.Estado == model.VentaConfirmada {
			stockMov, err = s.stock.ApplySaleReversalTx(tx, rc, venta, now)
			if err != nil {
				return err
			}
			cajaMovs, err = s.caja.ReverseSaleTx(tx, rc, venta, now)
			if err != nil {
				return err
			}
		}

		venta.Estado = model.VentaAnulada
		venta.MotivoAnulacion = &motivo
		venta.AnuladaAt = &now
		return s.repo.SaveTx(tx, venta)
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "Venta",
		EntityID:   venta.ID,
		Action:     audit.ActionCancel,
		UsuarioID:  rc.UsuarioID,
		Before:     audit.Snapshot(map[string]string{"estado": estadoAntes}),
		After:      audit.Snapshot(venta),
		Metadata:   audit.Snapshot(map[string]string{"motivo": motivo}),
		OccurredAt: now,
	})
	s.recordLedgerEvents(ctx, rc, venta, stockMov, cajaMovs, now)
	return ventaToResponse(venta), nil
}

// recordLedgerEvents audits the stock and caja side effects of a confirm or
// void, one event per balance change, mirroring what happened inside the
// committed transaction.
func (s *ventaService) recordLedgerEvents(ctx context.Context, rc RequestContext, venta *model.Venta, stockMov *model.MovimientoStock, cajaMovs []model.MovimientoCaja, now time.Time) {
	if stockMov != nil {
		for _, item := range stockMov.Items {
			s.recorder.Record(ctx, audit.Event{
				TenantID:   rc.TenantID,
				EntityType: "StockSaldo",
				EntityID:   item.ProductoID,
				Action:     audit.ActionAdjust,
				UsuarioID:  rc.UsuarioID,
				Before:     audit.Snapshot(map[string]string{"cantidad_actual": item.SaldoAntes.String()}),
				After:      audit.Snapshot(map[string]string{"cantidad_actual": item.SaldoDespues.String()}),
				Metadata: audit.Snapshot(map[string]string{
					"movimiento_id": stockMov.ID.String(),
					"venta_id":      venta.ID.String(),
				}),
				OccurredAt: now,
			})
		}
	}
	for _, mov := range cajaMovs {
		s.recorder.Record(ctx, audit.Event{
			TenantID:   rc.TenantID,
			EntityType: "MovimientoCaja",
			EntityID:   mov.ID,
			Action:     audit.ActionAdjust,
			UsuarioID:  rc.UsuarioID,
			Before:     audit.Snapshot(map[string]string{"saldo": mov.SaldoAntes.String()}),
			After:      audit.Snapshot(map[string]string{"saldo": mov.SaldoDespues.String()}),
			Metadata: audit.Snapshot(map[string]string{
				"venta_id": venta.ID.String(),
			}),
			OccurredAt: now,
		})
	}
}

// ── GetByID ───────────────────────────────────────────────────────────────────

func (s *ventaService) GetByID(ctx context.Context, rc RequestContext, ventaID uuid.UUID) (*dto.VentaResponse, error) {
	if err := rc.EnsureTenant(); err != nil {
		return nil, err
	}
	if err := rc.EnsureSucursal(); err != nil {
		return nil, err
	}
	venta, err := s.repo.FindByID(ctx, rc.TenantID, rc.SucursalID, ventaID)
	if err != nil {
		return nil, notFoundOr(err, "Venta no encontrada.")
	}
	return ventaToResponse(venta), nil
}

// ── Repricing ─────────────────────────────────────────────────────────────────

// repriceTx re-evaluates every line against the active promotions and
// persists the adjusted prices and the new total. Items must carry their
// Producto association for the base price and category.
func (s *ventaService) repriceTx(tx *gorm.DB, venta *model.Venta, promos []model.Promocion) error {
	carrito := make([]pricing.CartLine, 0, len(venta.Items))
	for i := range venta.Items {
		it := &venta.Items[i]
		line := pricing.CartLine{
			ProductoID: it.ProductoID,
			Cantidad:   it.Cantidad,
			PrecioBase: it.PrecioUnitario,
		}
		if it.Producto != nil {
			line.Categoria = it.Producto.Categoria
			line.PrecioBase = it.Producto.PrecioVenta
		}
		carrito = append(carrito, line)
	}

	total := decimal.Zero
	for i := range venta.Items {
		it := &venta.Items[i]
		pctx := pricing.Context{
			ProductoID: it.ProductoID,
			Cantidad:   it.Cantidad,
			PrecioBase: carrito[i].PrecioBase,
			Categoria:  carrito[i].Categoria,
			Carrito:    carrito,
		}
		res := s.engine.Evaluate(promos, pctx)
		it.PrecioUnitario = res.PrecioUnitario
		it.Subtotal = res.PrecioUnitario.Mul(it.Cantidad).Round(2)
		if res.Aplicada {
			id := res.PromocionID
			it.PromocionID = &id
		} else {
			it.PromocionID = nil
		}
		if err := s.repo.SaveItemTx(tx, it); err != nil {
			return err
		}
		total = total.Add(it.Subtotal)
	}
	venta.Total = total
	return s.repo.UpdateTotalTx(tx, venta.ID, total)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func ventaItemToResponse(it *model.VentaItem) dto.VentaItemResponse {
	resp := dto.VentaItemResponse{
		ID:             it.ID.String(),
		ProductoID:     it.ProductoID.String(),
		Cantidad:       it.Cantidad,
		PrecioUnitario: it.PrecioUnitario,
		Subtotal:       it.Subtotal,
	}
	if it.Producto != nil {
		resp.Producto = it.Producto.Nombre
	}
	if it.PromocionID != nil {
		id := it.PromocionID.String()
		resp.PromocionID = &id
	}
	return resp
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.VentaItemResponse, 0, len(v.Items))
	for i := range v.Items {
		items = append(items, ventaItemToResponse(&v.Items[i]))
	}
	pagos := make([]dto.PagoVentaResponse, 0, len(v.Pagos))
	for _, p := range v.Pagos {
		pagos = append(pagos, dto.PagoVentaResponse{MedioPago: p.MedioPago, Monto: p.Monto})
	}
	resp := &dto.VentaResponse{
		ID:              v.ID.String(),
		Estado:          v.Estado,
		ListaPrecio:     v.ListaPrecio,
		Total:           v.Total,
		Facturada:       v.Facturada,
		MotivoAnulacion: v.MotivoAnulacion,
		Items:           items,
		Pagos:           pagos,
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
	}
	if v.SesionCajaID != nil {
		id := v.SesionCajaID.String()
		resp.SesionCajaID = &id
	}
	if v.ConfirmadaAt != nil {
		t := v.ConfirmadaAt.Format(time.RFC3339)
		resp.ConfirmadaAt = &t
	}
	if v.AnuladaAt != nil {
		t := v.AnuladaAt.Format(time.RFC3339)
		resp.AnuladaAt = &t
	}
	return resp
}
