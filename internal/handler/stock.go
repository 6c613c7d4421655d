package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/dto"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/service"
)

// StockHandler exposes manual stock adjustments and the ledger queries.
type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

// RegistrarMovimiento godoc
// @Summary      Registrar un ajuste manual o una merma
// @Description  Aplica todos los renglones atómicamente y deja un movimiento inmutable con saldo antes y después por producto.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        movimiento  body      dto.RegistrarMovimientoStockRequest  true  "Movimiento"
// @Success      201         {object}  dto.MovimientoStockResponse
// @Failure      422         {object}  apierror.Error
// @Security     BearerAuth
// @Router       /stock/movimientos [post]
func (h *StockHandler) RegistrarMovimiento(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.RegistrarMovimientoStockRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.RegistrarMovimiento(c.Request.Context(), rc, req, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSaldos godoc
// @Summary      Saldos de stock de la sucursal
// @Tags         stock
// @Produce      json
// @Param        search  query     string  false  "Filtro por nombre o código de barras"
// @Success      200     {array}   dto.SaldoResponse
// @Security     BearerAuth
// @Router       /stock/saldos [get]
func (h *StockHandler) GetSaldos(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}

	resp, err := h.service.GetSaldos(c.Request.Context(), rc, c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetMovimientos godoc
// @Summary      Historial de movimientos de stock
// @Tags         stock
// @Produce      json
// @Param        producto_id  query     string  false  "Filtrar por producto"
// @Param        tipo         query     string  false  "ajuste_manual | merma | venta | reversion"
// @Param        desde        query     string  false  "YYYY-MM-DD"
// @Param        hasta        query     string  false  "YYYY-MM-DD"
// @Param        page         query     int     false  "Página (desde 1)"
// @Param        limit        query     int     false  "Tamaño de página, máx 500"
// @Success      200          {object}  dto.MovimientoStockListResponse
// @Security     BearerAuth
// @Router       /stock/movimientos [get]
func (h *StockHandler) GetMovimientos(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.MovimientoStockFilterRequest
	if !bindQueryAndValidate(c, &req) {
		return
	}

	resp, err := h.service.GetMovimientos(c.Request.Context(), rc, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
