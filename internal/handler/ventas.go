package handler

import (
	"net/http"

	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/middleware"
	"github.com/menuvercel/mitienda-host/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary Registra una venta contra el stock asignado al vendedor
// @Tags ventas
// @Accept json
// @Produce json
// @Param body body dto.RegistrarVentaRequest true "Venta"
// @Success 201 {object} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "Stock insuficiente"
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), middleware.GetClaims(c).UsuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary Lista ventas en un rango de fechas
// @Tags ventas
// @Produce json
// @Param desde query string true "YYYY-MM-DD"
// @Param hasta query string true "YYYY-MM-DD (inclusive)"
// @Param vendedor_id query string false "Vendedor ID"
// @Param producto_id query string false "Producto ID"
// @Success 200 {array} dto.VentaResponse
// @Router /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.ListarVentas(c.Request.Context(), claims.UsuarioID, claims.Rol, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
