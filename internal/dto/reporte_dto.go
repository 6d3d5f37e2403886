package dto

import "github.com/shopspring/decimal"

// VentaDiariaResponse is one agent's sales total for a calendar day.
type VentaDiariaResponse struct {
	VendedorID     string          `json:"vendedor_id"`
	VendedorNombre string          `json:"vendedor_nombre"`
	Total          decimal.Decimal `json:"total_ventas"`
}

// VentaSemanalResponse is one agent's sales total for a Monday-Sunday week.
type VentaSemanalResponse struct {
	WeekStart      string          `json:"week_start"`
	WeekEnd        string          `json:"week_end"`
	VendedorID     string          `json:"vendedor_id"`
	VendedorNombre string          `json:"vendedor_nombre"`
	Total          decimal.Decimal `json:"total_ventas"`
	Ganancia       decimal.Decimal `json:"ganancia"`
}

// SemanaResponse groups the weekly rows of one week.
type SemanaResponse struct {
	FechaInicio string                 `json:"fecha_inicio"`
	FechaFin    string                 `json:"fecha_fin"`
	Total       decimal.Decimal        `json:"total"`
	Ganancia    decimal.Decimal        `json:"ganancia"`
	Ventas      []VentaSemanalResponse `json:"ventas"`
}
