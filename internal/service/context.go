package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/apierror"
)

// RequestContext carries the tenant scope every operation runs under. It is
// extracted from the JWT claims at the middleware boundary; services only
// check it, never build it.
type RequestContext struct {
	TenantID   uuid.UUID
	SucursalID uuid.UUID
	UsuarioID  uuid.UUID
}

func (rc RequestContext) EnsureTenant() error {
	if rc.TenantID == uuid.Nil {
		return apierror.Unauthorized("Tenant no especificado.")
	}
	return nil
}

func (rc RequestContext) EnsureSucursal() error {
	if rc.SucursalID == uuid.Nil {
		return apierror.Unauthorized("Sucursal no especificada.")
	}
	return nil
}

func (rc RequestContext) EnsureUser() error {
	if rc.UsuarioID == uuid.Nil {
		return apierror.Unauthorized("Usuario no especificado.")
	}
	return nil
}

// Ensure checks the full scope at once. Every mutating operation starts here.
func (rc RequestContext) Ensure() error {
	if err := rc.EnsureTenant(); err != nil {
		return err
	}
	if err := rc.EnsureSucursal(); err != nil {
		return err
	}
	return rc.EnsureUser()
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// txError normalizes a rolled-back transaction error: taxonomy errors pass
// through untouched, anything else is reported as transient so the caller
// knows the whole operation was reverted and may be retried.
func txError(err error) error {
	if err == nil {
		return nil
	}
	var e *apierror.Error
	if errors.As(err, &e) {
		return e
	}
	return apierror.Transient("La operación fue revertida, reintente.", err)
}

// notFoundOr maps a record miss to the taxonomy; other lookup failures stay
// internal.
func notFoundOr(err error, detail string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(detail)
	}
	return apierror.Internal(err)
}
