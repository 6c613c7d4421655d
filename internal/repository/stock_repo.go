package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// MovimientoStockFilter narrows the movement listing.
type MovimientoStockFilter struct {
	ProductoID *uuid.UUID
	Tipo       string
	Desde      *time.Time
	Hasta      *time.Time
	Page       int
	Limit      int
}

// StockRepository owns saldos y movimientos. Saldo mutations only happen
// through GetSaldoForUpdateTx + SaveSaldoTx inside a caller-owned
// transaction, which is what serializes concurrent movements per product row.
type StockRepository interface {
	DB() *gorm.DB
	// GetSaldoForUpdateTx locks the (tenant, sucursal, producto) saldo row,
	// creating it at zero when absent.
	GetSaldoForUpdateTx(tx *gorm.DB, tenantID, sucursalID, productoID uuid.UUID) (*model.StockSaldo, error)
	SaveSaldoTx(tx *gorm.DB, s *model.StockSaldo) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error
	ListSaldos(ctx context.Context, tenantID, sucursalID uuid.UUID, search string) ([]model.StockSaldo, error)
	ListMovimientos(ctx context.Context, tenantID, sucursalID uuid.UUID, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) GetSaldoForUpdateTx(tx *gorm.DB, tenantID, sucursalID, productoID uuid.UUID) (*model.StockSaldo, error) {
	var s model.StockSaldo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND sucursal_id = ? AND producto_id = ?", tenantID, sucursalID, productoID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = model.StockSaldo{
			TenantID:       tenantID,
			SucursalID:     sucursalID,
			ProductoID:     productoID,
			CantidadActual: decimal.Zero,
		}
		if err := tx.Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) SaveSaldoTx(tx *gorm.DB, s *model.StockSaldo) error {
	return tx.Model(&model.StockSaldo{}).Where("id = ?", s.ID).
		Update("cantidad_actual", s.CantidadActual).Error
}

func (r *stockRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListSaldos(ctx context.Context, tenantID, sucursalID uuid.UUID, search string) ([]model.StockSaldo, error) {
	q := r.db.WithContext(ctx).Model(&model.StockSaldo{}).
		Preload("Producto").
		Where("stock_saldos.tenant_id = ? AND stock_saldos.sucursal_id = ?", tenantID, sucursalID)
	if search != "" {
		q = q.Joins("JOIN productos ON productos.id = stock_saldos.producto_id").
			Where("productos.nombre ILIKE ? OR productos.codigo_barras = ?", "%"+search+"%", search)
	}
	var saldos []model.StockSaldo
	err := q.Find(&saldos).Error
	return saldos, err
}

func (r *stockRepo) ListMovimientos(ctx context.Context, tenantID, sucursalID uuid.UUID, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).
		Where("tenant_id = ? AND sucursal_id = ?", tenantID, sucursalID)

	if filter.ProductoID != nil {
		q = q.Where("id IN (SELECT movimiento_id FROM movimientos_stock_items WHERE producto_id = ?)", *filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Desde != nil {
		q = q.Where("created_at >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("created_at <= ?", *filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movimientos []model.MovimientoStock
	err := q.Preload("Items.Producto").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&movimientos).Error
	return movimientos, total, err
}
