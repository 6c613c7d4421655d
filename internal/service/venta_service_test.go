package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/apierror"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/audit"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/dto"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/repository"
)

// ── In-memory venta repository ────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
	// forUpdateCalls counts the locked reads the service performed.
	forUpdateCalls int
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) Create(_ context.Context, v *model.Venta) error {
	v.ID = uuid.New()
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, tenantID, sucursalID, id uuid.UUID) (*model.Venta, error) {
	return r.find(tenantID, sucursalID, id)
}

func (r *stubVentaRepo) FindByIDForUpdateTx(_ *gorm.DB, tenantID, sucursalID, id uuid.UUID) (*model.Venta, error) {
	r.forUpdateCalls++
	return r.find(tenantID, sucursalID, id)
}

func (r *stubVentaRepo) find(tenantID, sucursalID, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok || v.TenantID != tenantID || v.SucursalID != sucursalID {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) CreateItemTx(_ *gorm.DB, item *model.VentaItem) error {
	item.ID = uuid.New()
	return nil
}

func (r *stubVentaRepo) SaveItemTx(_ *gorm.DB, _ *model.VentaItem) error { return nil }

func (r *stubVentaRepo) DeleteItemTx(_ *gorm.DB, _ uuid.UUID) error { return nil }

func (r *stubVentaRepo) UpdateTotalTx(_ *gorm.DB, ventaID uuid.UUID, total decimal.Decimal) error {
	if v, ok := r.ventas[ventaID]; ok {
		v.Total = total
	}
	return nil
}

func (r *stubVentaRepo) SaveTx(_ *gorm.DB, v *model.Venta) error {
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) CreatePagoTx(_ *gorm.DB, pago *model.VentaPago) error {
	pago.ID = uuid.New()
	return nil
}

// ── Fixed promotion provider ──────────────────────────────────────────────────

type stubPricing struct {
	promos []model.Promocion
}

var _ PricingService = (*stubPricing)(nil)

func (s *stubPricing) ActivePromos(context.Context, uuid.UUID, time.Time) ([]model.Promocion, error) {
	return s.promos, nil
}

// ── Capturing audit recorder ──────────────────────────────────────────────────

type memRecorder struct {
	eventos []audit.Event
}

func (r *memRecorder) Record(_ context.Context, ev audit.Event) {
	r.eventos = append(r.eventos, ev)
}

func (r *memRecorder) porTipo(entityType string) []audit.Event {
	var out []audit.Event
	for _, ev := range r.eventos {
		if ev.EntityType == entityType {
			out = append(out, ev)
		}
	}
	return out
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type ventaFixture struct {
	rc        RequestContext
	svc       VentaService
	cajaSvc   CajaService
	stockSvc  StockService
	ventaRepo *stubVentaRepo
	prodRepo  *stubProductoRepo
	stockRepo *stubStockRepo
	cajaRepo  *stubCajaRepo
	pricing   *stubPricing
	recorder  *memRecorder
}

func newVentaFixture() *ventaFixture {
	f := &ventaFixture{
		rc:        testRC(),
		ventaRepo: newStubVentaRepo(),
		prodRepo:  &stubProductoRepo{},
		stockRepo: &stubStockRepo{},
		cajaRepo:  newStubCajaRepo(),
		pricing:   &stubPricing{},
		recorder:  &memRecorder{},
	}
	f.stockSvc = NewStockService(f.stockRepo, f.prodRepo, audit.NopRecorder{})
	f.cajaSvc = NewCajaService(f.cajaRepo, audit.NopRecorder{})
	f.svc = NewVentaService(f.ventaRepo, f.prodRepo, f.pricing, f.stockSvc, f.cajaSvc, f.recorder, nil)
	return f
}

func (f *ventaFixture) iniciarVenta(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Iniciar(context.Background(), f.rc, dto.IniciarVentaRequest{}, time.Now())
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func (f *ventaFixture) abrirCaja(t *testing.T, montoInicial string) uuid.UUID {
	t.Helper()
	return abrirSesionDePrueba(t, f.cajaSvc, f.rc, montoInicial)
}

func (f *ventaFixture) saldoDe(t *testing.T, productoID uuid.UUID) decimal.Decimal {
	t.Helper()
	s, err := f.stockRepo.GetSaldo(context.Background(), f.rc.TenantID, f.rc.SucursalID, productoID)
	if err != nil {
		return decimal.Zero
	}
	return s.CantidadActual
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

func TestIniciarVentaListaPorDefecto(t *testing.T) {
	f := newVentaFixture()
	resp, err := f.svc.Iniciar(context.Background(), f.rc, dto.IniciarVentaRequest{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.VentaBorrador, resp.Estado)
	assert.Equal(t, "Minorista", resp.ListaPrecio)
	assert.True(t, resp.Total.IsZero())
}

func TestAgregarItemPorCodigoIncrementaLinea(t *testing.T) {
	f := newVentaFixture()
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779100", "150")
	ventaID := f.iniciarVenta(t)

	primero, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779100", time.Now())
	require.NoError(t, err)
	assert.True(t, primero.Creado)
	assert.True(t, primero.CantidadDespues.Equal(d("1")))

	segundo, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779100", time.Now())
	require.NoError(t, err)
	assert.False(t, segundo.Creado)
	assert.True(t, segundo.CantidadAntes.Equal(d("1")))
	assert.True(t, segundo.CantidadDespues.Equal(d("2")))
	assert.True(t, segundo.Total.Equal(d("300")), "total: %s", segundo.Total)

	venta := f.ventaRepo.ventas[ventaID]
	require.Len(t, venta.Items, 1) // one line per product
	assert.Equal(t, p.ID, venta.Items[0].ProductoID)
}

func TestAgregarItemCodigoAlternativo(t *testing.T) {
	f := newVentaFixture()
	alt := "ALT-1"
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Azúcar", "779101", "90")
	p.CodigoAlt = &alt
	ventaID := f.iniciarVenta(t)

	resp, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "ALT-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), resp.Item.ProductoID)
}

func TestAgregarItemCodigoDesconocido(t *testing.T) {
	f := newVentaFixture()
	ventaID := f.iniciarVenta(t)

	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "000000", time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestAgregarItemProductoInactivo(t *testing.T) {
	f := newVentaFixture()
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Discontinuado", "779102", "10")
	p.Activo = false
	ventaID := f.iniciarVenta(t)

	_, err := f.svc.AgregarItemPorProducto(context.Background(), f.rc, ventaID, p.ID, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestActualizarItemCantidadCeroElimina(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Leche", "779103", "120")
	ventaID := f.iniciarVenta(t)

	resp, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779103", time.Now())
	require.NoError(t, err)
	itemID, err := uuid.Parse(resp.Item.ID)
	require.NoError(t, err)

	venta, err := f.svc.ActualizarItem(context.Background(), f.rc, ventaID, itemID, decimal.Zero, time.Now())
	require.NoError(t, err)
	assert.Empty(t, venta.Items)
	assert.True(t, venta.Total.IsZero())
}

func TestActualizarItemCantidadNegativa(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Pan", "779104", "200")
	ventaID := f.iniciarVenta(t)

	resp, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779104", time.Now())
	require.NoError(t, err)
	itemID, _ := uuid.Parse(resp.Item.ID)

	_, err = f.svc.ActualizarItem(context.Background(), f.rc, ventaID, itemID, d("-1"), time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestModificarVentaConfirmadaConflict(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Café", "779105", "500")
	ventaID := f.iniciarVenta(t)
	f.ventaRepo.ventas[ventaID].Estado = model.VentaConfirmada

	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779105", time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestVentaDeOtroTenantNoExiste(t *testing.T) {
	f := newVentaFixture()
	ventaID := f.iniciarVenta(t)

	otro := testRC()
	_, err := f.svc.GetByID(context.Background(), otro, ventaID)
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

// ── Confirmar ─────────────────────────────────────────────────────────────────

func TestConfirmarRequiereFacturada(t *testing.T) {
	f := newVentaFixture()
	ventaID := f.iniciarVenta(t)

	_, err := f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Pagos: []dto.PagoVentaRequest{{MedioPago: "EFECTIVO", Monto: d("100")}},
	}, time.Now())
	require.Error(t, err)
	apiErr := apierror.AsError(err)
	assert.Equal(t, apierror.KindValidation, apiErr.Kind)
	assert.Contains(t, apiErr.Fields, "facturada")
}

func TestConfirmarSinItems(t *testing.T) {
	f := newVentaFixture()
	ventaID := f.iniciarVenta(t)
	f.abrirCaja(t, "1000")

	facturada := false
	_, err := f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Pagos:     []dto.PagoVentaRequest{{MedioPago: "EFECTIVO", Monto: d("100")}},
		Facturada: &facturada,
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestConfirmarFlujoCompleto(t *testing.T) {
	f := newVentaFixture()
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779106", "150")
	sesionID := f.abrirCaja(t, "1000")
	ventaID := f.iniciarVenta(t)

	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779106", time.Now())
	require.NoError(t, err)
	_, err = f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779106", time.Now())
	require.NoError(t, err)

	facturada := false
	venta, err := f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Pagos:     []dto.PagoVentaRequest{{MedioPago: "efectivo", Monto: d("300")}},
		Facturada: &facturada,
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, model.VentaConfirmada, venta.Estado)
	require.NotNil(t, venta.Facturada)
	assert.False(t, *venta.Facturada)
	require.NotNil(t, venta.SesionCajaID)
	assert.Equal(t, sesionID.String(), *venta.SesionCajaID)
	require.Len(t, venta.Pagos, 1)
	assert.Equal(t, "EFECTIVO", venta.Pagos[0].MedioPago)

	// Stock egress: 2 units out, balance goes negative from zero.
	assert.True(t, f.saldoDe(t, p.ID).Equal(d("-2")))

	// Cash settlement: one venta movement in the open session.
	require.Len(t, f.cajaRepo.movs, 1)
	assert.Equal(t, model.CajaVenta, f.cajaRepo.movs[0].Tipo)
	assert.True(t, f.cajaRepo.movs[0].Monto.Equal(d("300")))
	assert.Equal(t, sesionID, f.cajaRepo.movs[0].SesionCajaID)
}

func TestConfirmarDosVecesConflict(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779107", "150")
	f.abrirCaja(t, "1000")
	ventaID := f.iniciarVenta(t)
	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779107", time.Now())
	require.NoError(t, err)

	facturada := false
	req := dto.ConfirmarVentaRequest{
		Pagos:     []dto.PagoVentaRequest{{MedioPago: "EFECTIVO", Monto: d("150")}},
		Facturada: &facturada,
	}
	_, err = f.svc.Confirmar(context.Background(), f.rc, ventaID, req, time.Now())
	require.NoError(t, err)

	_, err = f.svc.Confirmar(context.Background(), f.rc, ventaID, req, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestConfirmarSinSesionAbierta(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779108", "150")
	ventaID := f.iniciarVenta(t)
	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779108", time.Now())
	require.NoError(t, err)

	facturada := false
	_, err = f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Pagos:     []dto.PagoVentaRequest{{MedioPago: "EFECTIVO", Monto: d("150")}},
		Facturada: &facturada,
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestConfirmarSinPagosEsVentaFiada(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779115", "150")
	sesionID := f.abrirCaja(t, "1000")
	ventaID := f.iniciarVenta(t)
	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779115", time.Now())
	require.NoError(t, err)

	facturada := false
	venta, err := f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Facturada: &facturada,
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, model.VentaConfirmada, venta.Estado)
	assert.Empty(t, venta.Pagos)
	// No payments, no cash movements, but the sale still settles against
	// the open session.
	assert.Empty(t, f.cajaRepo.movs)
	require.NotNil(t, venta.SesionCajaID)
	assert.Equal(t, sesionID.String(), *venta.SesionCajaID)
}

func TestMutacionesDeItemsLeenLaVentaBloqueada(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779116", "150")
	ventaID := f.iniciarVenta(t)

	resp, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779116", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, f.ventaRepo.forUpdateCalls)

	itemID, err := uuid.Parse(resp.Item.ID)
	require.NoError(t, err)
	_, err = f.svc.ActualizarItem(context.Background(), f.rc, ventaID, itemID, d("3"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, f.ventaRepo.forUpdateCalls)

	_, err = f.svc.QuitarItem(context.Background(), f.rc, ventaID, itemID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, f.ventaRepo.forUpdateCalls)
}

// ── Anular ────────────────────────────────────────────────────────────────────

func TestAnularBorradorNoTocaLedgers(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779109", "150")
	ventaID := f.iniciarVenta(t)
	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779109", time.Now())
	require.NoError(t, err)

	venta, err := f.svc.Anular(context.Background(), f.rc, ventaID, "cliente se arrepintió", time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.VentaAnulada, venta.Estado)
	require.NotNil(t, venta.MotivoAnulacion)

	assert.Empty(t, f.stockRepo.movs)
	assert.Empty(t, f.cajaRepo.movs)
}

func TestAnularConfirmadaRevierteAmbosLedgers(t *testing.T) {
	f := newVentaFixture()
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779110", "150")
	f.abrirCaja(t, "1000")
	ventaID := f.iniciarVenta(t)
	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779110", time.Now())
	require.NoError(t, err)
	_, err = f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779110", time.Now())
	require.NoError(t, err)

	facturada := false
	_, err = f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Pagos:     []dto.PagoVentaRequest{{MedioPago: "EFECTIVO", Monto: d("300")}},
		Facturada: &facturada,
	}, time.Now())
	require.NoError(t, err)
	require.True(t, f.saldoDe(t, p.ID).Equal(d("-2")))

	venta, err := f.svc.Anular(context.Background(), f.rc, ventaID, "error de carga", time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.VentaAnulada, venta.Estado)

	// Full restock back to the pre-sale balance.
	assert.True(t, f.saldoDe(t, p.ID).IsZero())

	// Stock ledger keeps both movements, nothing is deleted.
	require.Len(t, f.stockRepo.movs, 2)
	assert.Equal(t, model.StockVenta, f.stockRepo.movs[0].Tipo)
	assert.Equal(t, model.StockReversion, f.stockRepo.movs[1].Tipo)

	// Cash ledger: settlement plus its inverse.
	require.Len(t, f.cajaRepo.movs, 2)
	assert.Equal(t, model.CajaAnulacion, f.cajaRepo.movs[1].Tipo)
	assert.True(t, f.cajaRepo.movs[1].Monto.Equal(d("-300")))
}

func TestAnularDosVecesConflict(t *testing.T) {
	f := newVentaFixture()
	ventaID := f.iniciarVenta(t)

	_, err := f.svc.Anular(context.Background(), f.rc, ventaID, "motivo", time.Now())
	require.NoError(t, err)

	_, err = f.svc.Anular(context.Background(), f.rc, ventaID, "otra vez", time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestAnularSinMotivo(t *testing.T) {
	f := newVentaFixture()
	ventaID := f.iniciarVenta(t)

	_, err := f.svc.Anular(context.Background(), f.rc, ventaID, "   ", time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

// ── Auditoría de confirmación y anulación ─────────────────────────────────────

func TestConfirmarYAnularAuditanAmbosLedgers(t *testing.T) {
	f := newVentaFixture()
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779117", "150")
	f.abrirCaja(t, "1000")
	ventaID := f.iniciarVenta(t)
	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779117", time.Now())
	require.NoError(t, err)
	f.recorder.eventos = nil

	facturada := false
	_, err = f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Pagos:     []dto.PagoVentaRequest{{MedioPago: "EFECTIVO", Monto: d("150")}},
		Facturada: &facturada,
	}, time.Now())
	require.NoError(t, err)

	// One sale event plus one per balance each ledger changed.
	require.Len(t, f.recorder.porTipo("Venta"), 1)
	assert.Equal(t, audit.ActionConfirm, f.recorder.porTipo("Venta")[0].Action)

	stockEvs := f.recorder.porTipo("StockSaldo")
	require.Len(t, stockEvs, 1)
	assert.Equal(t, audit.ActionAdjust, stockEvs[0].Action)
	assert.Equal(t, p.ID, stockEvs[0].EntityID)
	assert.NotNil(t, stockEvs[0].Before)
	assert.NotNil(t, stockEvs[0].After)

	cajaEvs := f.recorder.porTipo("MovimientoCaja")
	require.Len(t, cajaEvs, 1)
	assert.Equal(t, audit.ActionAdjust, cajaEvs[0].Action)

	f.recorder.eventos = nil
	_, err = f.svc.Anular(context.Background(), f.rc, ventaID, "error de carga", time.Now())
	require.NoError(t, err)

	require.Len(t, f.recorder.porTipo("Venta"), 1)
	assert.Equal(t, audit.ActionCancel, f.recorder.porTipo("Venta")[0].Action)
	assert.Len(t, f.recorder.porTipo("StockSaldo"), 1)
	assert.Len(t, f.recorder.porTipo("MovimientoCaja"), 1)
}

func TestAnularBorradorNoAuditaLedgers(t *testing.T) {
	f := newVentaFixture()
	ventaID := f.iniciarVenta(t)
	f.recorder.eventos = nil

	_, err := f.svc.Anular(context.Background(), f.rc, ventaID, "cliente se fue", time.Now())
	require.NoError(t, err)
	assert.Len(t, f.recorder.porTipo("Venta"), 1)
	assert.Empty(t, f.recorder.porTipo("StockSaldo"))
	assert.Empty(t, f.recorder.porTipo("MovimientoCaja"))
}

// ── Ciclo completo con stock previo ───────────────────────────────────────────

func TestVentaDescuentaYAnulacionRestituyeElStock(t *testing.T) {
	f := newVentaFixture()
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779118", "150")
	f.abrirCaja(t, "1000")

	// Initial goods receipt: five units on the shelf.
	_, err := f.stockSvc.RegistrarMovimiento(context.Background(), f.rc, dto.RegistrarMovimientoStockRequest{
		Tipo:   model.StockAjusteManual,
		Motivo: "recepción de mercadería",
		Items: []dto.MovimientoStockItemRequest{
			{ProductoID: p.ID.String(), Cantidad: d("5"), Direccion: "ingreso"},
		},
	}, time.Now())
	require.NoError(t, err)

	ventaID := f.iniciarVenta(t)
	_, err = f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779118", time.Now())
	require.NoError(t, err)

	facturada := false
	_, err = f.svc.Confirmar(context.Background(), f.rc, ventaID, dto.ConfirmarVentaRequest{
		Pagos:     []dto.PagoVentaRequest{{MedioPago: "EFECTIVO", Monto: d("150")}},
		Facturada: &facturada,
	}, time.Now())
	require.NoError(t, err)

	saldos, err := f.stockSvc.GetSaldos(context.Background(), f.rc, "")
	require.NoError(t, err)
	require.Len(t, saldos, 1)
	assert.True(t, saldos[0].CantidadActual.Equal(d("4")), "saldo: %s", saldos[0].CantidadActual)

	_, err = f.svc.Anular(context.Background(), f.rc, ventaID, "devolución inmediata", time.Now())
	require.NoError(t, err)

	saldos, err = f.stockSvc.GetSaldos(context.Background(), f.rc, "")
	require.NoError(t, err)
	require.Len(t, saldos, 1)
	assert.True(t, saldos[0].CantidadActual.Equal(d("5")), "saldo: %s", saldos[0].CantidadActual)
}

// ── Promociones en el carrito ─────────────────────────────────────────────────

func TestRepreciaConPorcentajePorCategoria(t *testing.T) {
	f := newVentaFixture()
	productoDePrueba(f.prodRepo, f.rc.TenantID, "Yerba", "779111", "100")

	categoria := "Almacén"
	pct := d("10")
	f.pricing.promos = []model.Promocion{{
		ID:         uuid.New(),
		Tipo:       model.PromoPorcentajeCategoria,
		Categoria:  &categoria,
		Porcentaje: &pct,
	}}

	ventaID := f.iniciarVenta(t)
	resp, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779111", time.Now())
	require.NoError(t, err)

	assert.True(t, resp.Item.PrecioUnitario.Equal(d("90")), "precio: %s", resp.Item.PrecioUnitario)
	assert.NotNil(t, resp.Item.PromocionID)
	assert.True(t, resp.Total.Equal(d("90")))
}

func TestRepreciaQuitaPromoCuandoDejaDeAplicar(t *testing.T) {
	f := newVentaFixture()
	p := productoDePrueba(f.prodRepo, f.rc.TenantID, "Gaseosa", "779112", "100")

	f.pricing.promos = []model.Promocion{{
		ID:        uuid.New(),
		Tipo:      model.PromoDosPorUno,
		Productos: []model.PromocionProducto{{ProductoID: p.ID}},
	}}

	ventaID := f.iniciarVenta(t)
	_, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779112", time.Now())
	require.NoError(t, err)
	resp, err := f.svc.AgregarItemPorCodigo(context.Background(), f.rc, ventaID, "779112", time.Now())
	require.NoError(t, err)
	// Two units, one free: effective unit price 50.
	assert.True(t, resp.Item.PrecioUnitario.Equal(d("50")))
	assert.True(t, resp.Total.Equal(d("100")))

	itemID, _ := uuid.Parse(resp.Item.ID)
	venta, err := f.svc.ActualizarItem(context.Background(), f.rc, ventaID, itemID, d("1"), time.Now())
	require.NoError(t, err)
	// Below the 2x1 threshold the full price comes back.
	require.Len(t, venta.Items, 1)
	assert.True(t, venta.Items[0].PrecioUnitario.Equal(d("100")))
	assert.Nil(t, venta.Items[0].PromocionID)
	assert.True(t, venta.Total.Equal(d("100")))
}
