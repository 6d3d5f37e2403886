package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
	// Fecha is RFC 3339 or YYYY-MM-DD (interpreted in the configured timezone).
	Fecha string `json:"fecha" validate:"required"`
}

// VentaFilter is bound from the query string of GET /v1/ventas.
// Desde/Hasta are inclusive calendar dates (YYYY-MM-DD).
type VentaFilter struct {
	VendedorID string `form:"vendedor_id"`
	ProductoID string `form:"producto_id"`
	Desde      string `form:"desde"       validate:"required,datetime=2006-01-02"`
	Hasta      string `form:"hasta"       validate:"required,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto_nombre,omitempty"`
	ProductoFoto   string          `json:"producto_foto,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	VendedorID     string          `json:"vendedor_id"`
	Fecha          string          `json:"fecha"`
}
