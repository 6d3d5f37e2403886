package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearProductoRequest binds from JSON or from multipart form fields.
type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"       form:"nombre"       validate:"required,min=1,max=120"`
	// Precio is parsed from multipart forms by the handler; gin cannot bind decimals.
	Precio      decimal.Decimal `json:"precio"       form:"-"            validate:"gte=0"`
	Cantidad    int             `json:"cantidad"     form:"cantidad"     validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" form:"stock_minimo" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"       form:"nombre"       validate:"omitempty,min=1,max=120"`
	Precio      *decimal.Decimal `json:"precio"       form:"-"`
	Cantidad    *int             `json:"cantidad"     form:"cantidad"     validate:"omitempty,min=0"`
	StockMinimo *int             `json:"stock_minimo" form:"stock_minimo" validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Precio      decimal.Decimal `json:"precio"`
	Cantidad    int             `json:"cantidad"`
	Foto        string          `json:"foto"`
	StockMinimo int             `json:"stock_minimo"`
}

type FotoResponse struct {
	URL string `json:"url"`
}
