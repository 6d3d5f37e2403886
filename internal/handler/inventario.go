package handler

import (
	"net/http"

	"github.com/menuvercel/mitienda-host/internal/apierror"
	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/middleware"
	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Entregar godoc
// @Summary Entrega stock del almacen a un vendedor
// @Tags transacciones
// @Accept json
// @Produce json
// @Param body body dto.MovimientoRequest true "Entrega"
// @Success 201 {object} dto.TransaccionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "Stock insuficiente"
// @Router /v1/transacciones [post]
func (h *InventarioHandler) Entregar(c *gin.Context) {
	var req dto.MovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Entregar(c.Request.Context(), middleware.GetClaims(c).UsuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Reducir godoc
// @Summary Devuelve stock de un vendedor al almacen (Baja)
// @Tags transacciones
// @Accept json
// @Produce json
// @Param body body dto.MovimientoRequest true "Baja"
// @Success 201 {object} dto.TransaccionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/transacciones/baja [post]
func (h *InventarioHandler) Reducir(c *gin.Context) {
	var req dto.MovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Reducir(c.Request.Context(), middleware.GetClaims(c).UsuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarTransacciones godoc
// @Summary Lista el historial de entregas y bajas
// @Description A Vendedor only sees movements it took part in.
// @Tags transacciones
// @Produce json
// @Param vendedor_id query string false "Vendedor ID"
// @Param producto_id query string false "Producto ID"
// @Success 200 {array} dto.TransaccionResponse
// @Router /v1/transacciones [get]
func (h *InventarioHandler) ListarTransacciones(c *gin.Context) {
	var filter dto.TransaccionFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)
	if claims.Rol == model.RolVendedor {
		if filter.VendedorID != "" {
			if id, err := uuid.Parse(filter.VendedorID); err != nil || id != claims.UsuarioID {
				c.JSON(http.StatusUnauthorized, apierror.New("No autorizado"))
				return
			}
		}
		filter.VendedorID = claims.UsuarioID.String()
	}
	resp, err := h.svc.ListarTransacciones(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarAsignaciones godoc
// @Summary Productos asignados a un vendedor
// @Tags usuarios
// @Produce json
// @Param id path string true "Vendedor ID"
// @Success 200 {array} dto.AsignacionResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/vendedores/{id}/productos [get]
func (h *InventarioHandler) ListarAsignaciones(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	if claims.Rol != model.RolAlmacen && claims.UsuarioID != id {
		c.JSON(http.StatusUnauthorized, apierror.New("No autorizado"))
		return
	}
	resp, err := h.svc.ListarAsignaciones(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas godoc
// @Summary Productos en o por debajo de su stock minimo
// @Tags inventario
// @Produce json
// @Success 200 {array} dto.AlertaStockResponse
// @Router /v1/inventario/alertas [get]
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
