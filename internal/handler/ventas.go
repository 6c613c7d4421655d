package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/dto"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/service"
)

// VentasHandler exposes the sale lifecycle: open a draft, scan items,
// adjust quantities, confirm with payments, void.
type VentasHandler struct {
	service service.VentaService
}

func NewVentasHandler(s service.VentaService) *VentasHandler {
	return &VentasHandler{service: s}
}

// Iniciar godoc
// @Summary      Iniciar una venta en borrador
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        venta  body      dto.IniciarVentaRequest  true  "Lista de precios"
// @Success      201    {object}  dto.VentaResponse
// @Failure      422    {object}  apierror.Error
// @Security     BearerAuth
// @Router       /ventas [post]
func (h *VentasHandler) Iniciar(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	var req dto.IniciarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Iniciar(c.Request.Context(), rc, req, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AgregarItemPorCodigo godoc
// @Summary      Agregar un item escaneando un código
// @Description  Busca el producto por código de barras o código alternativo. Si el producto ya está en la venta, incrementa la cantidad.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "ID de la venta"
// @Param        item  body      dto.AgregarItemCodigoRequest  true  "Código escaneado"
// @Success      200   {object}  dto.AgregarItemResponse
// @Failure      404   {object}  apierror.Error
// @Failure      409   {object}  apierror.Error
// @Security     BearerAuth
// @Router       /ventas/{id}/items/codigo [post]
func (h *VentasHandler) AgregarItemPorCodigo(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	ventaID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarItemCodigoRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.AgregarItemPorCodigo(c.Request.Context(), rc, ventaID, req.Codigo, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarItemPorProducto godoc
// @Summary      Agregar un item por ID de producto
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "ID de la venta"
// @Param        item  body      dto.AgregarItemProductoRequest  true  "Producto"
// @Success      200   {object}  dto.AgregarItemResponse
// @Security     BearerAuth
// @Router       /ventas/{id}/items [post]
func (h *VentasHandler) AgregarItemPorProducto(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	ventaID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarItemProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productoID, err := parseUUIDField(c, req.ProductoID, "producto_id")
	if err != nil {
		return
	}

	resp, err := h.service.AgregarItemPorProducto(c.Request.Context(), rc, ventaID, productoID, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarItem godoc
// @Summary      Fijar la cantidad de un item
// @Description  Cantidad 0 elimina la línea. Toda la venta se retasa con las promociones vigentes.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id      path      string                     true  "ID de la venta"
// @Param        itemId  path      string                     true  "ID del item"
// @Param        item    body      dto.ActualizarItemRequest  true  "Nueva cantidad"
// @Success      200     {object}  dto.VentaResponse
// @Security     BearerAuth
// @Router       /ventas/{id}/items/{itemId} [patch]
func (h *VentasHandler) ActualizarItem(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	ventaID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}
	var req dto.ActualizarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.ActualizarItem(c.Request.Context(), rc, ventaID, itemID, req.Cantidad, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QuitarItem godoc
// @Summary      Quitar un item de la venta
// @Tags         ventas
// @Produce      json
// @Param        id      path      string  true  "ID de la venta"
// @Param        itemId  path      string  true  "ID del item"
// @Success      200     {object}  dto.VentaResponse
// @Security     BearerAuth
// @Router       /ventas/{id}/items/{itemId} [delete]
func (h *VentasHandler) QuitarItem(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	ventaID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "itemId")
	if !ok {
		return
	}

	resp, err := h.service.QuitarItem(c.Request.Context(), rc, ventaID, itemID, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar godoc
// @Summary      Confirmar una venta
// @Description  Descuenta stock, registra los pagos en la sesión de caja y deja la venta inmutable. Todo o nada.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id     path      string                     true  "ID de la venta"
// @Param        venta  body      dto.ConfirmarVentaRequest  true  "Pagos y facturación"
// @Success      200    {object}  dto.VentaResponse
// @Failure      409    {object}  apierror.Error
// @Failure      422    {object}  apierror.Error
// @Security     BearerAuth
// @Router       /ventas/{id}/confirmar [post]
func (h *VentasHandler) Confirmar(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	ventaID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Confirmar(c.Request.Context(), rc, ventaID, req, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary      Anular una venta
// @Description  Una venta confirmada repone el stock y revierte los pagos en la sesión de caja abierta.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id     path      string                  true  "ID de la venta"
// @Param        venta  body      dto.AnularVentaRequest  true  "Motivo"
// @Success      200    {object}  dto.VentaResponse
// @Failure      409    {object}  apierror.Error
// @Security     BearerAuth
// @Router       /ventas/{id}/anular [post]
func (h *VentasHandler) Anular(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	ventaID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Anular(c.Request.Context(), rc, ventaID, req.Motivo, time.Now())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary      Obtener una venta
// @Tags         ventas
// @Produce      json
// @Param        id  path      string  true  "ID de la venta"
// @Success      200 {object}  dto.VentaResponse
// @Failure      404 {object}  apierror.Error
// @Security     BearerAuth
// @Router       /ventas/{id} [get]
func (h *VentasHandler) GetByID(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		return
	}
	ventaID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), rc, ventaID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
