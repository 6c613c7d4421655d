package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is the persisted form of an audit event. Rows are written in
// batches by the worker pool; the business transaction never waits on them.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_tenant_entity,priority:1"`
	EntityType string    `gorm:"type:varchar(40);not null;index:idx_audit_tenant_entity,priority:2"`
	EntityID   string    `gorm:"type:varchar(80);not null;index:idx_audit_tenant_entity,priority:3"`
	Action     string    `gorm:"type:varchar(20);not null"`
	UsuarioID  uuid.UUID `gorm:"type:uuid;not null"`
	Before     *string   `gorm:"type:jsonb"`
	After      *string   `gorm:"type:jsonb"`
	Metadata   *string   `gorm:"type:jsonb"`
	CreatedAt  time.Time
}

func (AuditLog) TableName() string { return "audit_logs" }
