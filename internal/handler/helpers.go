package handler

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/middleware"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// validator does not know decimal.Decimal; expose it as float64 so
	// numeric rules (gt, gte, ...) work on monetary fields.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// bindAndValidate binds the JSON body and runs struct validation.
// Malformed JSON is a 400; rule violations are a 422 with a field map.
func bindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Cuerpo de la solicitud inválido"})
		return false
	}
	return validateStruct(c, obj)
}

// bindQueryAndValidate is the query-string counterpart for list endpoints.
func bindQueryAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Parámetros de consulta inválidos"})
		return false
	}
	return validateStruct(c, obj)
}

func validateStruct(c *gin.Context, obj interface{}) bool {
	if err := validate.Struct(obj); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = "validación fallida en regla '" + fe.Tag() + "'"
			}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": "Validacion fallida.",
			"fields": fields,
		})
		return false
	}
	return true
}

// requestContext builds the tenant-scoped identity from the JWT claims.
// Responds 401 and returns false when the token lacks a usable identity.
func requestContext(c *gin.Context) (service.RequestContext, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token no provisto"})
		return service.RequestContext{}, false
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Tenant no especificado."})
		return service.RequestContext{}, false
	}
	sucursalID, err := uuid.Parse(claims.SucursalID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Sucursal no especificada."})
		return service.RequestContext{}, false
	}
	usuarioID, err := uuid.Parse(claims.UsuarioID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Usuario no especificado."})
		return service.RequestContext{}, false
	}
	return service.RequestContext{
		TenantID:   tenantID,
		SucursalID: sucursalID,
		UsuarioID:  usuarioID,
	}, true
}

// parseUUIDField parses a UUID that arrived in the body as a string.
// The validator already checked the format, so a failure here is a 422
// naming the field, same shape as the validation envelope.
func parseUUIDField(c *gin.Context, value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": "Validacion fallida.",
			"fields": map[string]string{field: "debe ser un UUID válido"},
		})
		return uuid.Nil, err
	}
	return id, nil
}

// pathUUID parses a UUID path parameter, responding 400 on garbage.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Identificador inválido: " + name})
		return uuid.Nil, false
	}
	return id, true
}
