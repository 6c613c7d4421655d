package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
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

type CajaService interface {
	CrearCaja(ctx context.Context, rc RequestContext, req dto.CrearCajaRequest) (*dto.CajaResponse, error)
	AbrirSesion(ctx context.Context, rc RequestContext, req dto.AbrirSesionRequest, now time.Time) (*dto.SesionCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, rc RequestContext, sesionID uuid.UUID, req dto.MovimientoCajaRequest, now time.Time) (*dto.MovimientoCajaResponse, error)
	CerrarSesion(ctx context.Context, rc RequestContext, sesionID uuid.UUID, req dto.CerrarSesionRequest, now time.Time) (*dto.SesionCajaResponse, error)
	GetResumen(ctx context.Context, rc RequestContext, sesionID uuid.UUID) (*dto.ResumenSesionResponse, error)
	Historial(ctx context.Context, rc RequestContext, req dto.HistorialSesionesRequest) ([]dto.SesionCajaResponse, error)
	// SettleSaleTx records one positive venta movement per payment line inside
	// the sale's transaction. A nil sesionID resolves the branch's open session.
	// Returns the session the sale settled against and the movements written.
	SettleSaleTx(tx *gorm.DB, rc RequestContext, sesionID *uuid.UUID, venta *model.Venta, now time.Time) (uuid.UUID, []model.MovimientoCaja, error)
	// ReverseSaleTx writes the inverse movements of a settled sale into the
	// branch's currently open session.
	ReverseSaleTx(tx *gorm.DB, rc RequestContext, venta *model.Venta, now time.Time) ([]model.MovimientoCaja, error)
}

type cajaService struct {
	repo     repository.CajaRepository
	recorder audit.Recorder
}

func NewCajaService(repo repository.CajaRepository, recorder audit.Recorder) CajaService {
	return &cajaService{repo: repo, recorder: recorder}
}

// normalizarMedio canonicalizes a payment-method tag: trimmed, upper-cased.
func normalizarMedio(medio string) string {
	return strings.ToUpper(strings.TrimSpace(medio))
}

// ── CrearCaja ─────────────────────────────────────────────────────────────────

func (s *cajaService) CrearCaja(ctx context.Context, rc RequestContext, req dto.CrearCajaRequest) (*dto.CajaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apierror.ValidationField("nombre", "El nombre es obligatorio.")
	}
	numero := strings.TrimSpace(req.Numero)
	if numero == "" {
		return nil, apierror.ValidationField("numero", "El número es obligatorio.")
	}
	for _, r := range numero {
		if r < '0' || r > '9' {
			return nil, apierror.ValidationField("numero", "El número debe ser numérico.")
		}
	}

	caja := &model.Caja{
		TenantID:   rc.TenantID,
		SucursalID: rc.SucursalID,
		Nombre:     nombre,
		Numero:     numero,
		Activo:     true,
	}
	if err := s.repo.CreateCaja(ctx, caja); err != nil {
		return nil, apierror.Internal(err)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "Caja",
		EntityID:   caja.ID,
		Action:     audit.ActionCreate,
		UsuarioID:  rc.UsuarioID,
		After:      audit.Snapshot(caja),
	})

	return &dto.CajaResponse{
		ID:        caja.ID.String(),
		Nombre:    caja.Nombre,
		Numero:    caja.Numero,
		Activo:    caja.Activo,
		CreatedAt: caja.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ── AbrirSesion ───────────────────────────────────────────────────────────────

func (s *cajaService) AbrirSesion(ctx context.Context, rc RequestContext, req dto.AbrirSesionRequest, now time.Time) (*dto.SesionCajaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, apierror.ValidationField("caja_id", "Identificador de caja inválido.")
	}
	if req.MontoInicial.IsNegative() {
		return nil, apierror.ValidationField("monto_inicial", "El monto inicial no puede ser negativo.")
	}
	turno := strings.ToUpper(strings.TrimSpace(req.Turno))
	switch turno {
	case model.TurnoManana, model.TurnoTarde, model.TurnoNoche:
	default:
		return nil, apierror.ValidationField("turno", "Turno inválido: se espera MANANA, TARDE o NOCHE.")
	}

	if _, err := s.repo.FindCaja(ctx, rc.TenantID, rc.SucursalID, cajaID); err != nil {
		return nil, notFoundOr(err, "Caja no encontrada.")
	}
	abierta, err := s.repo.HasSesionAbierta(ctx, rc.TenantID, cajaID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	if abierta {
		return nil, apierror.Conflict("Ya existe una sesión abierta para esta caja.")
	}

	sesion := &model.SesionCaja{
		TenantID:     rc.TenantID,
		SucursalID:   rc.SucursalID,
		CajaID:       cajaID,
		MontoInicial: req.MontoInicial,
		Turno:        turno,
		Estado:       model.SesionAbierta,
		AbiertaAt:    now,
	}
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		return nil, apierror.Internal(err)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "SesionCaja",
		EntityID:   sesion.ID,
		Action:     audit.ActionCreate,
		UsuarioID:  rc.UsuarioID,
		After:      audit.Snapshot(sesion),
		OccurredAt: now,
	})

	return sesionToResponse(sesion), nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual movements. Sign policy: retiro/gasto take a positive monto and are
// stored negated; ajuste is stored with the sign the caller gave; a monto of
// exactly zero is always rejected.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, rc RequestContext, sesionID uuid.UUID, req dto.MovimientoCajaRequest, now time.Time) (*dto.MovimientoCajaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	if req.Monto.IsZero() {
		return nil, apierror.ValidationField("monto", "El monto no puede ser cero.")
	}
	monto := req.Monto
	switch req.Tipo {
	case model.CajaRetiro, model.CajaGasto:
		if !req.Monto.IsPositive() {
			return nil, apierror.ValidationField("monto", "El monto debe ser mayor a cero.")
		}
		monto = req.Monto.Neg()
	case model.CajaAjuste:
		// Stored as given.
	default:
		return nil, apierror.ValidationField("tipo", "Tipo de movimiento inválido.")
	}
	// An omitted medio means cash, the overwhelmingly common case at the till.
	medio := normalizarMedio(req.MedioPago)
	if medio == "" {
		medio = model.MedioEfectivo
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, apierror.ValidationField("motivo", "El motivo es obligatorio.")
	}

	var mov *model.MovimientoCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.repo.FindSesionForUpdateTx(tx, rc.TenantID, rc.SucursalID, sesionID)
		if err != nil {
			return notFoundOr(err, "Sesión de caja no encontrada.")
		}
		if sesion.Estado != model.SesionAbierta {
			return apierror.Conflict("La sesión de caja ya está cerrada.")
		}
		antes, err := s.repo.SaldoActualTx(tx, sesion.ID)
		if err != nil {
			return err
		}
		mov = &model.MovimientoCaja{
			SesionCajaID: sesion.ID,
			Tipo:         req.Tipo,
			MedioPago:    medio,
			Monto:        monto,
			Motivo:       motivo,
			SaldoAntes:   antes,
			SaldoDespues: antes.Add(monto),
			CreatedAt:    now,
		}
		return s.repo.CreateMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "MovimientoCaja",
		EntityID:   mov.ID,
		Action:     audit.ActionCreate,
		UsuarioID:  rc.UsuarioID,
		After:      audit.Snapshot(mov),
		OccurredAt: now,
	})

	return movimientoCajaToResponse(mov), nil
}

// ── CerrarSesion ──────────────────────────────────────────────────────────────
// Cierre is terminal. EFECTIVO has its own dedicated counted field; the
// itemized medios list may not mention it, contain duplicates or negatives.

func (s *cajaService) CerrarSesion(ctx context.Context, rc RequestContext, sesionID uuid.UUID, req dto.CerrarSesionRequest, now time.Time) (*dto.SesionCajaResponse, error) {
	if err := rc.Ensure(); err != nil {
		return nil, err
	}
	if req.EfectivoContado.IsNegative() {
		return nil, apierror.ValidationField("efectivo_contado", "El efectivo contado no puede ser negativo.")
	}
	vistos := make(map[string]bool, len(req.Medios))
	contados := make([]struct {
		medio   string
		contado decimal.Decimal
	}, 0, len(req.Medios))
	for i, m := range req.Medios {
		field := fmt.Sprintf("medios[%d]", i)
		medio := normalizarMedio(m.Medio)
		if medio == "" {
			return nil, apierror.ValidationField(field+".medio", "El medio es obligatorio.")
		}
		if medio == model.MedioEfectivo {
			return nil, apierror.ValidationField(field+".medio", "EFECTIVO se declara en su campo dedicado.")
		}
		if vistos[medio] {
			return nil, apierror.ValidationField(field+".medio", fmt.Sprintf("Medio duplicado: %s.", medio))
		}
		if m.Contado.IsNegative() {
			return nil, apierror.ValidationField(field+".contado", "El monto contado no puede ser negativo.")
		}
		vistos[medio] = true
		contados = append(contados, struct {
			medio   string
			contado decimal.Decimal
		}{medio, m.Contado})
	}

	var sesion *model.SesionCaja
	var medios []model.SesionCierreMedio
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionForUpdateTx(tx, rc.TenantID, rc.SucursalID, sesionID)
		if err != nil {
			return notFoundOr(err, "Sesión de caja no encontrada.")
		}
		if sesion.Estado != model.SesionAbierta {
			return apierror.Conflict("La sesión de caja ya está cerrada.")
		}

		sums, err := s.repo.SumMovimientosPorMedioTx(tx, sesion.ID)
		if err != nil {
			return err
		}

		efectivoEsperado := sesion.MontoInicial.Add(sums[model.MedioEfectivo])
		desvio := req.EfectivoContado.Sub(efectivoEsperado)
		contado := req.EfectivoContado

		medios = medios[:0]
		for _, c := range contados {
			esperado := sums[c.medio]
			medios = append(medios, model.SesionCierreMedio{
				SesionCajaID: sesion.ID,
				Medio:        c.medio,
				Esperado:     esperado,
				Contado:      c.contado,
				Desvio:       c.contado.Sub(esperado),
			})
		}
		for i := range medios {
			if err := s.repo.CreateCierreMedioTx(tx, &medios[i]); err != nil {
				return err
			}
		}

		sesion.Estado = model.SesionCerrada
		sesion.EfectivoContado = &contado
		sesion.EfectivoEsperado = &efectivoEsperado
		sesion.Desvio = &desvio
		sesion.CerradaAt = &now
		return s.repo.SaveSesionTx(tx, sesion)
	})
	if txErr != nil {
		return nil, txError(txErr)
	}

	s.recorder.Record(ctx, audit.Event{
		TenantID:   rc.TenantID,
		EntityType: "SesionCaja",
		EntityID:   sesion.ID,
		Action:     audit.ActionClose,
		UsuarioID:  rc.UsuarioID,
		After:      audit.Snapshot(sesion),
		OccurredAt: now,
	})

	resp := sesionToResponse(sesion)
	for _, m := range medios {
		resp.Medios = append(resp.Medios, dto.CierreMedioResponse{
			Medio:    m.Medio,
			Esperado: m.Esperado,
			Contado:  m.Contado,
			Desvio:   m.Desvio,
		})
	}
	return resp, nil
}

// ── Sale settlement ───────────────────────────────────────────────────────────

func (s *cajaService) SettleSaleTx(tx *gorm.DB, rc RequestContext, sesionID *uuid.UUID, venta *model.Venta, now time.Time) (uuid.UUID, []model.MovimientoCaja, error) {
	var sesion *model.SesionCaja
	var err error
	if sesionID != nil {
		sesion, err = s.repo.FindSesionForUpdateTx(tx, rc.TenantID, rc.SucursalID, *sesionID)
		if err != nil {
			return uuid.Nil, nil, notFoundOr(err, "Sesión de caja no encontrada.")
		}
		if sesion.Estado != model.SesionAbierta {
			return uuid.Nil, nil, apierror.Conflict("La sesión de caja ya está cerrada.")
		}
	} else {
		sesion, err = s.repo.FindSesionAbiertaPorSucursalTx(tx, rc.TenantID, rc.SucursalID)
		if err != nil {
			return uuid.Nil, nil, apierror.ValidationField("sesion_caja_id",
				"No hay sesión de caja abierta en la sucursal.")
		}
	}

	saldo, err := s.repo.SaldoActualTx(tx, sesion.ID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	ref := venta.ID
	movs := make([]model.MovimientoCaja, 0, len(venta.Pagos))
	for _, pago := range venta.Pagos {
		mov := &model.MovimientoCaja{
			SesionCajaID: sesion.ID,
			Tipo:         model.CajaVenta,
			MedioPago:    pago.MedioPago,
			Monto:        pago.Monto,
			Motivo:       fmt.Sprintf("Venta %s", venta.ID),
			SaldoAntes:   saldo,
			SaldoDespues: saldo.Add(pago.Monto),
			ReferenciaID: &ref,
			CreatedAt:    now,
		}
		if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
			return uuid.Nil, nil, err
		}
		saldo = mov.SaldoDespues
		movs = append(movs, *mov)
	}
	return sesion.ID, movs, nil
}

func (s *cajaService) ReverseSaleTx(tx *gorm.DB, rc RequestContext, venta *model.Venta, now time.Time) ([]model.MovimientoCaja, error) {
	sesion, err := s.repo.FindSesionAbiertaPorSucursalTx(tx, rc.TenantID, rc.SucursalID)
	if err != nil {
		return nil, apierror.Conflict("No hay sesión de caja abierta para registrar la anulación.")
	}
	saldo, err := s.repo.SaldoActualTx(tx, sesion.ID)
	if err != nil {
		return nil, err
	}
	ref := venta.ID
	movs := make([]model.MovimientoCaja, 0, len(venta.Pagos))
	for _, pago := range venta.Pagos {
		monto := pago.Monto.Neg()
		mov := &model.MovimientoCaja{
			SesionCajaID: sesion.ID,
			Tipo:         model.CajaAnulacion,
			MedioPago:    pago.MedioPago,
			Monto:        monto,
			Motivo:       fmt.Sprintf("Anulación venta %s", venta.ID),
			SaldoAntes:   saldo,
			SaldoDespues: saldo.Add(monto),
			ReferenciaID: &ref,
			CreatedAt:    now,
		}
		if err := s.repo.CreateMovimientoTx(tx, mov); err != nil {
			return nil, err
		}
		saldo = mov.SaldoDespues
		movs = append(movs, *mov)
	}
	return movs, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *cajaService) GetResumen(ctx context.Context, rc RequestContext, sesionID uuid.UUID) (*dto.ResumenSesionResponse, error) {
	if err := rc.EnsureTenant(); err != nil {
		return nil, err
	}
	if err := rc.EnsureSucursal(); err != nil {
		return nil, err
	}
	sesion, err := s.repo.FindSesion(ctx, rc.TenantID, rc.SucursalID, sesionID)
	if err != nil {
		return nil, notFoundOr(err, "Sesión de caja no encontrada.")
	}

	saldo, err := s.repo.SaldoActualTx(s.repo.DB(), sesion.ID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	sums, err := s.repo.SumMovimientosPorMedioTx(s.repo.DB(), sesion.ID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	movs, err := s.repo.ListMovimientos(ctx, sesion.ID)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	porMedio := make([]dto.MedioTotalResponse, 0, len(sums))
	for medio, total := range sums {
		porMedio = append(porMedio, dto.MedioTotalResponse{Medio: medio, Total: total})
	}
	sort.Slice(porMedio, func(i, j int) bool { return porMedio[i].Medio < porMedio[j].Medio })

	resumen := &dto.ResumenSesionResponse{
		Sesion:      *sesionToResponse(sesion),
		SaldoActual: saldo,
		PorMedio:    porMedio,
	}
	for i := range movs {
		resumen.Movimientos = append(resumen.Movimientos, *movimientoCajaToResponse(&movs[i]))
	}
	for _, m := range sesion.Medios {
		resumen.Sesion.Medios = append(resumen.Sesion.Medios, dto.CierreMedioResponse{
			Medio:    m.Medio,
			Esperado: m.Esperado,
			Contado:  m.Contado,
			Desvio:   m.Desvio,
		})
	}
	return resumen, nil
}

func (s *cajaService) Historial(ctx context.Context, rc RequestContext, req dto.HistorialSesionesRequest) ([]dto.SesionCajaResponse, error) {
	if err := rc.EnsureTenant(); err != nil {
		return nil, err
	}
	if err := rc.EnsureSucursal(); err != nil {
		return nil, err
	}
	desde, hasta, err := parseRango(req.Desde, req.Hasta)
	if err != nil {
		return nil, err
	}
	sesiones, err := s.repo.ListSesiones(ctx, rc.TenantID, rc.SucursalID, desde, hasta)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	out := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		out = append(out, *sesionToResponse(&sesiones[i]))
	}
	return out, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:               s.ID.String(),
		CajaID:           s.CajaID.String(),
		Turno:            s.Turno,
		Estado:           s.Estado,
		MontoInicial:     s.MontoInicial,
		EfectivoEsperado: s.EfectivoEsperado,
		EfectivoContado:  s.EfectivoContado,
		Desvio:           s.Desvio,
		AbiertaAt:        s.AbiertaAt.Format(time.RFC3339),
	}
	if s.CerradaAt != nil {
		t := s.CerradaAt.Format(time.RFC3339)
		resp.CerradaAt = &t
	}
	return resp
}

func movimientoCajaToResponse(m *model.MovimientoCaja) *dto.MovimientoCajaResponse {
	return &dto.MovimientoCajaResponse{
		ID:           m.ID.String(),
		Tipo:         m.Tipo,
		MedioPago:    m.MedioPago,
		Monto:        m.Monto,
		Motivo:       m.Motivo,
		SaldoAntes:   m.SaldoAntes,
		SaldoDespues: m.SaldoDespues,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
}
