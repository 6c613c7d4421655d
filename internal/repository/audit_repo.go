package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
)

// AuditRepository persists audit rows. Only the worker pool writes here;
// business transactions never wait on it.
type AuditRepository interface {
	CreateBatch(ctx context.Context, logs []model.AuditLog) error
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) CreateBatch(ctx context.Context, logs []model.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}
