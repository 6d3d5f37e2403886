package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, vendedorID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	// ListarVentas restricts a Vendedor caller to its own sales.
	ListarVentas(ctx context.Context, callerID uuid.UUID, rol string, filter dto.VentaFilter) ([]dto.VentaResponse, error)
}

type ventaService struct {
	tx           repository.TxRunner
	productos    repository.ProductoRepository
	ventas       repository.VentaRepository
	asignaciones repository.AsignacionRepository
	cache        *ReportCache
	loc          *time.Location
}

func NewVentaService(
	tx repository.TxRunner,
	productos repository.ProductoRepository,
	ventas repository.VentaRepository,
	asignaciones repository.AsignacionRepository,
	cache *ReportCache,
	loc *time.Location,
) VentaService {
	if loc == nil {
		loc = time.UTC
	}
	return &ventaService{tx: tx, productos: productos, ventas: ventas, asignaciones: asignaciones, cache: cache, loc: loc}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// One transaction:
//   1. Share-lock the product row (product before allocation, as in Entregar,
//      Reducir and EliminarProducto; the ventas foreign key check needs it too)
//   2. Lock the agent's allocation row and check its quantity
//   3. Decrement the allocation (conditional on staying >= 0)
//   4. Insert the sale priced at the allocation snapshot, not the live product price
// After commit the report cache generation is bumped.

func (s *ventaService) RegistrarVenta(ctx context.Context, vendedorID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if req.Cantidad <= 0 {
		return nil, ErrCantidadInvalida
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, ErrIDInvalido
	}
	fecha, err := parseFecha(req.Fecha, s.loc)
	if err != nil {
		return nil, err
	}

	var venta model.Venta
	err = s.tx.RunInTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.productos.FindByIDForShareTx(tx, productoID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductoNoAsignado
			}
			return fmt.Errorf("registrar venta: bloquear producto: %w", err)
		}

		a, err := s.asignaciones.FindForUpdateTx(tx, vendedorID, productoID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductoNoAsignado
		}
		if err != nil {
			return fmt.Errorf("registrar venta: buscar asignacion: %w", err)
		}
		if a.Cantidad < req.Cantidad {
			return ErrStockInsuficiente
		}

		ok, err := s.asignaciones.AjustarCantidadTx(tx, vendedorID, productoID, -req.Cantidad)
		if err != nil {
			return fmt.Errorf("registrar venta: descontar asignacion: %w", err)
		}
		if !ok {
			return ErrStockInsuficiente
		}

		venta = model.Venta{
			ProductoID:     productoID,
			Cantidad:       req.Cantidad,
			PrecioUnitario: a.Precio,
			Total:          a.Precio.Mul(decimal.NewFromInt(int64(req.Cantidad))),
			VendedorID:     vendedorID,
			Fecha:          fecha,
		}
		if err := s.ventas.CreateTx(tx, &venta); err != nil {
			return fmt.Errorf("registrar venta: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidar(ctx)
	resp := ventaToResponse(&venta)
	return &resp, nil
}

func (s *ventaService) ListarVentas(ctx context.Context, callerID uuid.UUID, rol string, filter dto.VentaFilter) ([]dto.VentaResponse, error) {
	desde, err := parseDia(filter.Desde, s.loc)
	if err != nil {
		return nil, err
	}
	hasta, err := parseDia(filter.Hasta, s.loc)
	if err != nil {
		return nil, err
	}

	f := repository.VentaFilter{Desde: desde, Hasta: hasta.AddDate(0, 0, 1)}
	if filter.VendedorID != "" {
		id, err := uuid.Parse(filter.VendedorID)
		if err != nil {
			return nil, ErrIDInvalido
		}
		f.VendedorID = &id
	}
	if filter.ProductoID != "" {
		id, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, ErrIDInvalido
		}
		f.ProductoID = &id
	}
	switch rol {
	case model.RolAlmacen:
	case model.RolVendedor:
		if f.VendedorID != nil && *f.VendedorID != callerID {
			return nil, ErrNoAutorizado
		}
		f.VendedorID = &callerID
	default:
		return nil, ErrNoAutorizado
	}

	ventas, err := s.ventas.List(ctx, f)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VentaResponse, len(ventas))
	for i := range ventas {
		resp[i] = ventaToResponse(&ventas[i])
	}
	return resp, nil
}

// parseFecha accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date, the
// latter interpreted as midnight in loc.
func parseFecha(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return parseDia(raw, loc)
}

func parseDia(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, ErrFechaInvalida
	}
	return t, nil
}

func ventaToResponse(v *model.Venta) dto.VentaResponse {
	r := dto.VentaResponse{
		ID:             v.ID.String(),
		ProductoID:     v.ProductoID.String(),
		Cantidad:       v.Cantidad,
		PrecioUnitario: v.PrecioUnitario,
		Total:          v.Total,
		VendedorID:     v.VendedorID.String(),
		Fecha:          v.Fecha.Format(time.RFC3339),
	}
	if v.Producto != nil {
		r.Producto = v.Producto.Nombre
		r.ProductoFoto = v.Producto.Foto
	}
	return r
}
