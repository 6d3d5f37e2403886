package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MovimientoRequest is the body of both Entrega and Baja operations.
type MovimientoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	VendedorID string `json:"vendedor_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// TransaccionFilter is bound from the query string of GET /v1/transacciones.
// Ids are parsed by the service, which accepts any letter case.
type TransaccionFilter struct {
	VendedorID string `form:"vendedor_id"`
	ProductoID string `form:"producto_id"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransaccionResponse struct {
	ID         string `json:"id"`
	ProductoID string `json:"producto_id"`
	Producto   string `json:"producto"`
	Cantidad   int    `json:"cantidad"`
	Tipo       string `json:"tipo"`
	Desde      string `json:"desde"`
	Hacia      string `json:"hacia"`
	Fecha      string `json:"fecha"`
}

// AsignacionResponse is one product held by a Vendedor.
type AsignacionResponse struct {
	ProductoID string          `json:"id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	Foto       string          `json:"foto"`
}

type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Cantidad    int    `json:"cantidad"`
	StockMinimo int    `json:"stock_minimo"`
}
