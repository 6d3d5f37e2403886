package handler

import (
	"net/http"
	"time"

	"github.com/menuvercel/mitienda-host/internal/middleware"
	"github.com/menuvercel/mitienda-host/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// VentasDiarias godoc
// @Summary Total de ventas por vendedor en un dia
// @Tags reportes
// @Produce json
// @Param fecha query string false "YYYY-MM-DD (por defecto hoy)"
// @Success 200 {array} dto.VentaDiariaResponse
// @Router /v1/reportes/ventas-diarias [get]
func (h *ReportesHandler) VentasDiarias(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.VentasDiarias(c.Request.Context(), claims.UsuarioID, claims.Rol, c.Query("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasSemanales godoc
// @Summary Total de ventas por vendedor y semana (lunes a domingo)
// @Tags reportes
// @Produce json
// @Param agrupado query bool false "Agrupar filas por semana"
// @Success 200 {array} dto.VentaSemanalResponse
// @Router /v1/reportes/ventas-semanales [get]
func (h *ReportesHandler) VentasSemanales(c *gin.Context) {
	claims := middleware.GetClaims(c)
	ctx := c.Request.Context()

	if c.Query("agrupado") == "true" {
		resp, err := h.svc.VentasSemanalesAgrupadas(ctx, claims.UsuarioID, claims.Rol)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := h.svc.VentasSemanales(ctx, claims.UsuarioID, claims.Rol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReporteSemanalPDF godoc
// @Summary Reporte semanal de ventas en PDF
// @Tags reportes
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /v1/reportes/ventas-semanales/pdf [get]
func (h *ReportesHandler) ReporteSemanalPDF(c *gin.Context) {
	claims := middleware.GetClaims(c)
	pdf, err := h.svc.ReporteSemanalPDF(c.Request.Context(), claims.UsuarioID, claims.Rol)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := "ventas-semanales-" + time.Now().Format("20060102") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
