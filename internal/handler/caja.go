package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/dto"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/service"
)

// CajaHandler exposes registers, cash sessions and their movements.
type CajaHandler struct {
	service service.CajaService
}

func NewCajaHandler(s service.CajaService) *CajaHandler {
	return &CajaHandler{service: s}
}

// CrearCaja godoc
// @Summary      Dar de alta una caja física
// @Tags         caja
// @Accept       json
// @Produce      json
// @Param        caja  body      dto.CrearCajaRequest  true  "Caja"
// @Success      201   {object}  dto.CajaResponse
// @Security     BearerAuth
// @Router       /cajas [post]
func (h *CajaHandler) CrearCaja(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.CrearCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.CrearCaja(c.Request.Context(), rc, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AbrirSesion godoc
// @Summary      Abrir una sesión de caja
// @Description  Una caja admite una sola sesión abierta a la vez.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Param        sesion  body      dto.AbrirSesionRequest  true  "Apertura"
// @Success      201     {object}  dto.SesionCajaResponse
// @Failure      409     {object}  apierror.Error
// @Security     BearerAuth
// @Router       /caja/sesiones [post]
func (h *CajaHandler) AbrirSesion(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.AbrirSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.AbrirSesion(c.Request.Context(), rc, req, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarMovimiento godoc
// @Summary      Registrar un retiro, gasto o ajuste
// @Description  Retiros y gastos siempre restan del saldo; el ajuste lleva el signo que se indique. Monto cero se rechaza.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Param        id          path      string                     true  "ID de la sesión"
// @Param        movimiento  body      dto.MovimientoCajaRequest  true  "Movimiento"
// @Success      201         {object}  dto.MovimientoCajaResponse
// @Failure      409         {object}  apierror.Error
// @Security     BearerAuth
// @Router       /caja/sesiones/{id}/movimientos [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	sesionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.MovimientoCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.RegistrarMovimiento(c.Request.Context(), rc, sesionID, req, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CerrarSesion godoc
// @Summary      Cerrar una sesión de caja
// @Description  Arqueo ciego: el operador declara lo contado y el sistema calcula el desvío. El cierre es terminal.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Param        id      path      string                   true  "ID de la sesión"
// @Param        cierre  body      dto.CerrarSesionRequest  true  "Cierre"
// @Success      200     {object}  dto.SesionCajaResponse
// @Failure      409     {object}  apierror.Error
// @Security     BearerAuth
// @Router       /caja/sesiones/{id}/cerrar [post]
func (h *CajaHandler) CerrarSesion(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	sesionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CerrarSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.CerrarSesion(c.Request.Context(), rc, sesionID, req, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetResumen godoc
// @Summary      Resumen de una sesión
// @Description  Saldo corriente, totales por medio de pago y movimientos de la sesión.
// @Tags         caja
// @Produce      json
// @Param        id   path      string  true  "ID de la sesión"
// @Success      200  {object}  dto.ResumenSesionResponse
// @Failure      404  {object}  apierror.Error
// @Security     BearerAuth
// @Router       /caja/sesiones/{id} [get]
func (h *CajaHandler) GetResumen(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	sesionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetResumen(c.Request.Context(), rc, sesionID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary      Historial de sesiones de la sucursal
// @Tags         caja
// @Produce      json
// @Param        desde  query     string  false  "YYYY-MM-DD"
// @Param        hasta  query     string  false  "YYYY-MM-DD"
// @Success      200    {array}   dto.SesionCajaResponse
// @Security     BearerAuth
// @Router       /caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.HistorialSesionesRequest
	if !bindQueryAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Historial(c.Request.Context(), rc, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
