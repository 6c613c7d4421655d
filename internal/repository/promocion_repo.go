package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// PromocionRepository reads the promotion catalog. The sale flow never
// writes it.
type PromocionRepository interface {
	Create(ctx context.Context, p *model.Promocion) error
	GetActivas(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]model.Promocion, error)
}

type promocionRepo struct{ db *gorm.DB }

func NewPromocionRepository(db *gorm.DB) PromocionRepository { return &promocionRepo{db: db} }

func (r *promocionRepo) Create(ctx context.Context, p *model.Promocion) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *promocionRepo) GetActivas(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]model.Promocion, error) {
	var promos []model.Promocion
	err := r.db.WithContext(ctx).
		Preload("Productos").
		Where("tenant_id = ? AND activa = true AND vigencia_desde <= ? AND vigencia_hasta >= ?", tenantID, now, now).
		Order("created_at ASC").
		Find(&promos).Error
	return promos, err
}
