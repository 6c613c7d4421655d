package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// CajaRepository owns cajas, sesiones y movimientos de caja. The running
// balance is always derived inside the caller's transaction via
// SaldoActualTx, never cached.
type CajaRepository interface {
	DB() *gorm.DB
	CreateCaja(ctx context.Context, c *model.Caja) error
	FindCaja(ctx context.Context, tenantID, sucursalID, cajaID uuid.UUID) (*model.Caja, error)
	HasSesionAbierta(ctx context.Context, tenantID, cajaID uuid.UUID) (bool, error)
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesion(ctx context.Context, tenantID, sucursalID, sesionID uuid.UUID) (*model.SesionCaja, error)
	// FindSesionForUpdateTx locks the session row so concurrent movements
	// (and close) against one session serialize.
	FindSesionForUpdateTx(tx *gorm.DB, tenantID, sucursalID, sesionID uuid.UUID) (*model.SesionCaja, error)
	// FindSesionAbiertaPorSucursalTx resolves the branch's open session when
	// a sale settles without an explicit session id.
	FindSesionAbiertaPorSucursalTx(tx *gorm.DB, tenantID, sucursalID uuid.UUID) (*model.SesionCaja, error)
	SaveSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	CreateCierreMedioTx(tx *gorm.DB, m *model.SesionCierreMedio) error
	// SaldoActualTx computes monto inicial + SUM(movimientos) within the
	// caller's transaction.
	SaldoActualTx(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error)
	SumMovimientosPorMedioTx(tx *gorm.DB, sesionID uuid.UUID) (map[string]decimal.Decimal, error)
	ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error)
	ListSesiones(ctx context.Context, tenantID, sucursalID uuid.UUID, desde, hasta *time.Time) ([]model.SesionCaja, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateCaja(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) FindCaja(ctx context.Context, tenantID, sucursalID, cajaID uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sucursal_id = ? AND id = ?", tenantID, sucursalID, cajaID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cajaRepo) HasSesionAbierta(ctx context.Context, tenantID, cajaID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("tenant_id = ? AND caja_id = ? AND estado = ?", tenantID, cajaID, model.SesionAbierta).
		Count(&count).Error
	return count > 0, err
}

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindSesion(ctx context.Context, tenantID, sucursalID, sesionID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Preload("Movimientos").Preload("Medios").
		Where("tenant_id = ? AND sucursal_id = ? AND id = ?", tenantID, sucursalID, sesionID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionForUpdateTx(tx *gorm.DB, tenantID, sucursalID, sesionID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND sucursal_id = ? AND id = ?", tenantID, sucursalID, sesionID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) FindSesionAbiertaPorSucursalTx(tx *gorm.DB, tenantID, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND sucursal_id = ? AND estado = ?", tenantID, sucursalID, model.SesionAbierta).
		Order("abierta_at DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cajaRepo) SaveSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Omit("Movimientos", "Medios").Save(s).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) CreateCierreMedioTx(tx *gorm.DB, m *model.SesionCierreMedio) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) SaldoActualTx(tx *gorm.DB, sesionID uuid.UUID) (decimal.Decimal, error) {
	var sesion model.SesionCaja
	if err := tx.Select("monto_inicial").First(&sesion, "id = ?", sesionID).Error; err != nil {
		return decimal.Zero, err
	}
	var suma decimal.NullDecimal
	err := tx.Model(&model.MovimientoCaja{}).
		Where("sesion_caja_id = ?", sesionID).
		Select("SUM(monto)").
		Scan(&suma).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !suma.Valid {
		return sesion.MontoInicial, nil
	}
	return sesion.MontoInicial.Add(suma.Decimal), nil
}

func (r *cajaRepo) SumMovimientosPorMedioTx(tx *gorm.DB, sesionID uuid.UUID) (map[string]decimal.Decimal, error) {
	type row struct {
		MedioPago string
		Total     decimal.Decimal
	}
	var rows []row
	err := tx.Model(&model.MovimientoCaja{}).
		Where("sesion_caja_id = ?", sesionID).
		Select("medio_pago, SUM(monto) AS total").
		Group("medio_pago").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		sums[r.MedioPago] = r.Total
	}
	return sums, nil
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) ListSesiones(ctx context.Context, tenantID, sucursalID uuid.UUID, desde, hasta *time.Time) ([]model.SesionCaja, error) {
	q := r.db.WithContext(ctx).Model(&model.SesionCaja{}).
		Where("tenant_id = ? AND sucursal_id = ?", tenantID, sucursalID)
	if desde != nil {
		q = q.Where("abierta_at >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("abierta_at <= ?", *hasta)
	}
	var sesiones []model.SesionCaja
	err := q.Order("abierta_at DESC").Find(&sesiones).Error
	return sesiones, err
}
