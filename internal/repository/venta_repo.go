package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// VentaRepository persists ventas, items y pagos. Methods with a Tx suffix
// run inside a transaction the service layer owns; the repository never
// commits on its own.
type VentaRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, v *model.Venta) error
	FindByID(ctx context.Context, tenantID, sucursalID, id uuid.UUID) (*model.Venta, error)
	// FindByIDForUpdateTx locks the venta row so concurrent confirm/void of
	// the same sale serialize on it.
	FindByIDForUpdateTx(tx *gorm.DB, tenantID, sucursalID, id uuid.UUID) (*model.Venta, error)
	CreateItemTx(tx *gorm.DB, item *model.VentaItem) error
	SaveItemTx(tx *gorm.DB, item *model.VentaItem) error
	DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error
	UpdateTotalTx(tx *gorm.DB, ventaID uuid.UUID, total decimal.Decimal) error
	SaveTx(tx *gorm.DB, v *model.Venta) error
	CreatePagoTx(tx *gorm.DB, pago *model.VentaPago) error
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, v *model.Venta) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, tenantID, sucursalID, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Pagos").
		Where("tenant_id = ? AND sucursal_id = ? AND id = ?", tenantID, sucursalID, id).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) FindByIDForUpdateTx(tx *gorm.DB, tenantID, sucursalID, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND sucursal_id = ? AND id = ?", tenantID, sucursalID, id).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	// Associations are loaded outside the locking clause: FOR UPDATE cannot
	// be combined with the LEFT JOINs Preload would emit on some drivers.
	// Items carry their Producto because repricing needs category and base price.
	if err := tx.Preload("Producto").Where("venta_id = ?", v.ID).Order("created_at ASC").Find(&v.Items).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("venta_id = ?", v.ID).Find(&v.Pagos).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) CreateItemTx(tx *gorm.DB, item *model.VentaItem) error {
	return tx.Create(item).Error
}

func (r *ventaRepo) SaveItemTx(tx *gorm.DB, item *model.VentaItem) error {
	return tx.Save(item).Error
}

func (r *ventaRepo) DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error {
	return tx.Delete(&model.VentaItem{}, "id = ?", itemID).Error
}

func (r *ventaRepo) UpdateTotalTx(tx *gorm.DB, ventaID uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.Venta{}).Where("id = ?", ventaID).Update("total", total).Error
}

func (r *ventaRepo) SaveTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Omit("Items", "Pagos").Save(v).Error
}

func (r *ventaRepo) CreatePagoTx(tx *gorm.DB, pago *model.VentaPago) error {
	return tx.Create(pago).Error
}
