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

// ── In-memory caja repository ─────────────────────────────────────────────────

type stubCajaRepo struct {
	cajas    map[uuid.UUID]*model.Caja
	sesiones map[uuid.UUID]*model.SesionCaja
	movs     []*model.MovimientoCaja
	cierres  []*model.SesionCierreMedio
}

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{
		cajas:    make(map[uuid.UUID]*model.Caja),
		sesiones: make(map[uuid.UUID]*model.SesionCaja),
	}
}

func (r *stubCajaRepo) DB() *gorm.DB { return nil }

func (r *stubCajaRepo) CreateCaja(_ context.Context, c *model.Caja) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	r.cajas[c.ID] = c
	return nil
}

func (r *stubCajaRepo) FindCaja(_ context.Context, tenantID, sucursalID, cajaID uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[cajaID]
	if !ok || c.TenantID != tenantID || c.SucursalID != sucursalID {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCajaRepo) HasSesionAbierta(_ context.Context, tenantID, cajaID uuid.UUID) (bool, error) {
	for _, s := range r.sesiones {
		if s.TenantID == tenantID && s.CajaID == cajaID && s.Estado == model.SesionAbierta {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	s.ID = uuid.New()
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) FindSesion(_ context.Context, tenantID, sucursalID, sesionID uuid.UUID) (*model.SesionCaja, error) {
	return r.findSesion(tenantID, sucursalID, sesionID)
}

func (r *stubCajaRepo) FindSesionForUpdateTx(_ *gorm.DB, tenantID, sucursalID, sesionID uuid.UUID) (*model.SesionCaja, error) {
	return r.findSesion(tenantID, sucursalID, sesionID)
}

func (r *stubCajaRepo) findSesion(tenantID, sucursalID, sesionID uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[sesionID]
	if !ok || s.TenantID != tenantID || s.SucursalID != sucursalID {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCajaRepo) FindSesionAbiertaPorSucursalTx(_ *gorm.DB, tenantID, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	var latest *model.SesionCaja
	for _, s := range r.sesiones {
		if s.TenantID != tenantID || s.SucursalID != sucursalID || s.Estado != model.SesionAbierta {
			continue
		}
		if latest == nil || s.AbiertaAt.After(latest.AbiertaAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *stubCajaRepo) SaveSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubCajaRepo) CreateMovimientoTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	m.ID = uuid.New()
	r.movs = append(r.movs, m)
	return nil
}

func (r *stubCajaRepo) CreateCierreMedioTx(_ *gorm.DB, m *model.SesionCierreMedio) error {
	m.ID = uuid.New()
	r.cierres = append(r.cierres, m)
	return nil
}

func (r *stubCajaRepo) SaldoActualTx(_ *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error) {
	s, ok := r.sesiones[sesionID]
	if !ok {
		return decimal.Zero, gorm.ErrRecordNotFound
	}
	saldo := s.MontoInicial
	for _, m := range r.movs {
		if m.SesionCajaID == sesionID {
			saldo = saldo.Add(m.Monto)
		}
	}
	return saldo, nil
}

func (r *stubCajaRepo) SumMovimientosPorMedioTx(_ *gorm.DB, sesionID uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, m := range r.movs {
		if m.SesionCajaID == sesionID {
			sums[m.MedioPago] = sums[m.MedioPago].Add(m.Monto)
		}
	}
	return sums, nil
}

func (r *stubCajaRepo) ListMovimientos(_ context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movs {
		if m.SesionCajaID == sesionID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) ListSesiones(_ context.Context, tenantID, sucursalID uuid.UUID, desde, hasta *time.Time) ([]model.SesionCaja, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		if s.TenantID != tenantID || s.SucursalID != sucursalID {
			continue
		}
		if desde != nil && s.AbiertaAt.Before(*desde) {
			continue
		}
		if hasta != nil && s.AbiertaAt.After(*hasta) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

// ── Test helpers ──────────────────────────────────────────────────────────────

func testRC() RequestContext {
	return RequestContext{
		TenantID:   uuid.New(),
		SucursalID: uuid.New(),
		UsuarioID:  uuid.New(),
	}
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// abrirSesionDePrueba creates a caja and opens a session on it.
func abrirSesionDePrueba(t *testing.T, svc CajaService, rc RequestContext, montoInicial string) uuid.UUID {
	t.Helper()
	caja, err := svc.CrearCaja(context.Background(), rc, dto.CrearCajaRequest{Nombre: "Caja 1", Numero: "1"})
	require.NoError(t, err)
	sesion, err := svc.AbrirSesion(context.Background(), rc, dto.AbrirSesionRequest{
		CajaID:       caja.ID,
		MontoInicial: d(montoInicial),
		Turno:        "MANANA",
	}, time.Now())
	require.NoError(t, err)
	id, err := uuid.Parse(sesion.ID)
	require.NoError(t, err)
	return id
}

// ── CrearCaja ─────────────────────────────────────────────────────────────────

func TestCrearCajaNumeroNoNumerico(t *testing.T) {
	svc := NewCajaService(newStubCajaRepo(), audit.NopRecorder{})
	_, err := svc.CrearCaja(context.Background(), testRC(), dto.CrearCajaRequest{Nombre: "Caja", Numero: "1A"})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCrearCajaOK(t *testing.T) {
	svc := NewCajaService(newStubCajaRepo(), audit.NopRecorder{})
	resp, err := svc.CrearCaja(context.Background(), testRC(), dto.CrearCajaRequest{Nombre: "  Caja Principal ", Numero: "2"})
	require.NoError(t, err)
	assert.Equal(t, "Caja Principal", resp.Nombre)
	assert.True(t, resp.Activo)
}

// ── AbrirSesion ───────────────────────────────────────────────────────────────

func TestAbrirSesionCajaInexistente(t *testing.T) {
	svc := NewCajaService(newStubCajaRepo(), audit.NopRecorder{})
	_, err := svc.AbrirSesion(context.Background(), testRC(), dto.AbrirSesionRequest{
		CajaID: uuid.NewString(),
		Turno:  "MANANA",
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestAbrirSesionDuplicadaConflict(t *testing.T) {
	svc := NewCajaService(newStubCajaRepo(), audit.NopRecorder{})
	rc := testRC()
	caja, err := svc.CrearCaja(context.Background(), rc, dto.CrearCajaRequest{Nombre: "Caja", Numero: "1"})
	require.NoError(t, err)

	req := dto.AbrirSesionRequest{CajaID: caja.ID, MontoInicial: d("1000"), Turno: "tarde"}
	sesion, err := svc.AbrirSesion(context.Background(), rc, req, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.TurnoTarde, sesion.Turno) // normalized to upper case

	_, err = svc.AbrirSesion(context.Background(), rc, req, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestAbrirSesionTurnoInvalido(t *testing.T) {
	svc := NewCajaService(newStubCajaRepo(), audit.NopRecorder{})
	rc := testRC()
	caja, err := svc.CrearCaja(context.Background(), rc, dto.CrearCajaRequest{Nombre: "Caja", Numero: "1"})
	require.NoError(t, err)

	_, err = svc.AbrirSesion(context.Background(), rc, dto.AbrirSesionRequest{
		CajaID: caja.ID,
		Turno:  "MADRUGADA",
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestAbrirSesionMontoInicialNegativo(t *testing.T) {
	svc := NewCajaService(newStubCajaRepo(), audit.NopRecorder{})
	rc := testRC()
	caja, err := svc.CrearCaja(context.Background(), rc, dto.CrearCajaRequest{Nombre: "Caja", Numero: "1"})
	require.NoError(t, err)

	_, err = svc.AbrirSesion(context.Background(), rc, dto.AbrirSesionRequest{
		CajaID:       caja.ID,
		MontoInicial: d("-1"),
		Turno:        "NOCHE",
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

func TestRegistrarMovimientoMontoCero(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	_, err := svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaAjuste, MedioPago: "efectivo", Monto: decimal.Zero, Motivo: "nada",
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestRegistrarRetiroSeNiegaElMonto(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	mov, err := svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaRetiro, MedioPago: " efectivo ", Monto: d("200"), Motivo: "retiro parcial",
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, mov.Monto.Equal(d("-200")), "monto: %s", mov.Monto)
	assert.Equal(t, "EFECTIVO", mov.MedioPago)
	assert.True(t, mov.SaldoAntes.Equal(d("1000")))
	assert.True(t, mov.SaldoDespues.Equal(d("800")))
}

func TestRegistrarMovimientoSinMedioAsumeEfectivo(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	mov, err := svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaGasto, Monto: d("80"), Motivo: "hielo para el freezer",
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.MedioEfectivo, mov.MedioPago)
	assert.True(t, mov.Monto.Equal(d("-80")))
}

func TestRegistrarRetiroMontoNegativoRechazado(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	_, err := svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaGasto, MedioPago: "EFECTIVO", Monto: d("-50"), Motivo: "gasto",
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestRegistrarAjusteConservaElSigno(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "500")

	mov, err := svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaAjuste, MedioPago: "EFECTIVO", Monto: d("-30.50"), Motivo: "faltante detectado",
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, mov.Monto.Equal(d("-30.50")))
	assert.True(t, mov.SaldoDespues.Equal(d("469.50")))
}

func TestRegistrarMovimientoSesionCerrada(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	_, err := svc.CerrarSesion(context.Background(), rc, sesionID, dto.CerrarSesionRequest{
		EfectivoContado: d("1000"),
	}, time.Now())
	require.NoError(t, err)

	_, err = svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaGasto, MedioPago: "EFECTIVO", Monto: d("10"), Motivo: "tarde",
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

// ── CerrarSesion ──────────────────────────────────────────────────────────────

func TestCerrarSesionCalculaDesvio(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	_, err := svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaRetiro, MedioPago: "EFECTIVO", Monto: d("300"), Motivo: "retiro",
	}, time.Now())
	require.NoError(t, err)

	// Expected cash: 1000 - 300 = 700. Counted 690 → desvío -10.
	sesion, err := svc.CerrarSesion(context.Background(), rc, sesionID, dto.CerrarSesionRequest{
		EfectivoContado: d("690"),
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.SesionCerrada, sesion.Estado)
	require.NotNil(t, sesion.EfectivoEsperado)
	assert.True(t, sesion.EfectivoEsperado.Equal(d("700")))
	require.NotNil(t, sesion.Desvio)
	assert.True(t, sesion.Desvio.Equal(d("-10")))
	require.NotNil(t, sesion.CerradaAt)
}

func TestCerrarSesionRechazaEfectivoEnMedios(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	_, err := svc.CerrarSesion(context.Background(), rc, sesionID, dto.CerrarSesionRequest{
		EfectivoContado: d("1000"),
		Medios:          []dto.MedioContadoRequest{{Medio: "efectivo", Contado: d("100")}},
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCerrarSesionRechazaMediosDuplicados(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	_, err := svc.CerrarSesion(context.Background(), rc, sesionID, dto.CerrarSesionRequest{
		EfectivoContado: d("1000"),
		Medios: []dto.MedioContadoRequest{
			{Medio: "TARJETA", Contado: d("100")},
			{Medio: " tarjeta ", Contado: d("50")},
		},
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestCerrarSesionDosVecesConflict(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	req := dto.CerrarSesionRequest{EfectivoContado: d("1000")}
	_, err := svc.CerrarSesion(context.Background(), rc, sesionID, req, time.Now())
	require.NoError(t, err)

	_, err = svc.CerrarSesion(context.Background(), rc, sesionID, req, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestCerrarSesionReconciliaPorMedio(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "500")

	// A card-paid expense leaves a TARJETA total of -40 in the ledger.
	_, err := svc.RegistrarMovimiento(context.Background(), rc, sesionID, dto.MovimientoCajaRequest{
		Tipo: model.CajaGasto, MedioPago: "TARJETA", Monto: d("40"), Motivo: "comisión",
	}, time.Now())
	require.NoError(t, err)

	sesion, err := svc.CerrarSesion(context.Background(), rc, sesionID, dto.CerrarSesionRequest{
		EfectivoContado: d("500"),
		Medios:          []dto.MedioContadoRequest{{Medio: "TARJETA", Contado: d("-40")}},
	}, time.Now())
	require.Error(t, err) // negative counted amounts are rejected
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	sesion, err = svc.CerrarSesion(context.Background(), rc, sesionID, dto.CerrarSesionRequest{
		EfectivoContado: d("500"),
		Medios:          []dto.MedioContadoRequest{{Medio: "TARJETA", Contado: d("0")}},
	}, time.Now())
	require.NoError(t, err)
	require.Len(t, sesion.Medios, 1)
	assert.Equal(t, "TARJETA", sesion.Medios[0].Medio)
	assert.True(t, sesion.Medios[0].Esperado.Equal(d("-40")))
	assert.True(t, sesion.Medios[0].Desvio.Equal(d("40")))
}

// ── Settlement hooks ──────────────────────────────────────────────────────────

func TestSettleSaleSinSesionAbierta(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()

	venta := &model.Venta{ID: uuid.New(), Pagos: []model.VentaPago{{MedioPago: "EFECTIVO", Monto: d("100")}}}
	_, _, err := svc.SettleSaleTx(nil, rc, nil, venta, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestReverseSaleSinSesionAbierta(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()

	venta := &model.Venta{ID: uuid.New(), Pagos: []model.VentaPago{{MedioPago: "EFECTIVO", Monto: d("100")}}}
	_, err := svc.ReverseSaleTx(nil, rc, venta, time.Now())
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestSettleSaleEncadenaSaldos(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, audit.NopRecorder{})
	rc := testRC()
	sesionID := abrirSesionDePrueba(t, svc, rc, "1000")

	venta := &model.Venta{ID: uuid.New(), Pagos: []model.VentaPago{
		{MedioPago: "EFECTIVO", Monto: d("150")},
		{MedioPago: "TARJETA", Monto: d("50")},
	}}
	usada, movs, err := svc.SettleSaleTx(nil, rc, &sesionID, venta, time.Now())
	require.NoError(t, err)
	assert.Equal(t, sesionID, usada)
	require.Len(t, movs, 2)

	require.Len(t, repo.movs, 2)
	assert.True(t, repo.movs[0].SaldoAntes.Equal(d("1000")))
	assert.True(t, repo.movs[0].SaldoDespues.Equal(d("1150")))
	assert.True(t, repo.movs[1].SaldoAntes.Equal(d("1150")))
	assert.True(t, repo.movs[1].SaldoDespues.Equal(d("1200")))
	assert.Equal(t, model.CajaVenta, repo.movs[0].Tipo)
}
