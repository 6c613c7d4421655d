package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// ProductoRepository is the catalog lookup the sale flow depends on.
// Every query is tenant-scoped; a miss in another tenant is just a miss.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Producto, error)
	// FindByCodigo resolves a scan against codigo_barras first, then codigo_alt.
	FindByCodigo(ctx context.Context, tenantID uuid.UUID, codigo string) (*model.Producto, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByCodigo(ctx context.Context, tenantID uuid.UUID, codigo string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (codigo_barras = ? OR codigo_alt = ?)", tenantID, codigo, codigo).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
