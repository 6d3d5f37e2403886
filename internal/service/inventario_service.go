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
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InventarioService owns the stock ledger: deliveries from the warehouse to an
// agent (Entrega), returns from an agent to the warehouse (Baja) and product removal.
type InventarioService interface {
	Entregar(ctx context.Context, actorID uuid.UUID, req dto.MovimientoRequest) (*dto.TransaccionResponse, error)
	Reducir(ctx context.Context, actorID uuid.UUID, req dto.MovimientoRequest) (*dto.TransaccionResponse, error)
	EliminarProducto(ctx context.Context, id uuid.UUID) error
	ListarTransacciones(ctx context.Context, filter dto.TransaccionFilter) ([]dto.TransaccionResponse, error)
	ListarAsignaciones(ctx context.Context, vendedorID uuid.UUID) ([]dto.AsignacionResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

// AlertaStockNotifier queues a low-stock notification for a product.
type AlertaStockNotifier interface {
	EnqueueAlertaStock(ctx context.Context, p model.Producto) error
}

type inventarioService struct {
	tx            repository.TxRunner
	productos     repository.ProductoRepository
	asignaciones  repository.AsignacionRepository
	transacciones repository.TransaccionRepository
	ventas        repository.VentaRepository
	usuarios      repository.UsuarioRepository
	alertas       AlertaStockNotifier
	cache         *ReportCache
}

func NewInventarioService(
	tx repository.TxRunner,
	productos repository.ProductoRepository,
	asignaciones repository.AsignacionRepository,
	transacciones repository.TransaccionRepository,
	ventas repository.VentaRepository,
	usuarios repository.UsuarioRepository,
	alertas AlertaStockNotifier,
	cache *ReportCache,
) InventarioService {
	return &inventarioService{
		tx:            tx,
		productos:     productos,
		asignaciones:  asignaciones,
		transacciones: transacciones,
		ventas:        ventas,
		usuarios:      usuarios,
		alertas:       alertas,
		cache:         cache,
	}
}

// ── Entregar ──────────────────────────────────────────────────────────────────
// One transaction:
//   1. Lock the product row and check central stock
//   2. Decrement productos.cantidad (conditional on staying >= 0)
//   3. Upsert the agent allocation, refreshing its price snapshot
//   4. Append the Entrega ledger row
// After commit a low-stock alert is queued when the product falls to its minimum.

func (s *inventarioService) Entregar(ctx context.Context, actorID uuid.UUID, req dto.MovimientoRequest) (*dto.TransaccionResponse, error) {
	productoID, vendedorID, err := parseMovimiento(req)
	if err != nil {
		return nil, err
	}
	if err := s.requireVendedor(ctx, vendedorID); err != nil {
		return nil, err
	}

	var trans model.Transaccion
	var producto model.Producto
	err = s.tx.RunInTx(ctx, func(tx *gorm.DB) error {
		p, err := s.productos.FindByIDForUpdateTx(tx, productoID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductoNoEncontrado
		}
		if err != nil {
			return fmt.Errorf("entregar: buscar producto: %w", err)
		}
		if p.Cantidad < req.Cantidad {
			return ErrStockInsuficiente
		}

		ok, err := s.productos.AjustarCantidadTx(tx, productoID, -req.Cantidad)
		if err != nil {
			return fmt.Errorf("entregar: descontar stock: %w", err)
		}
		if !ok {
			return ErrStockInsuficiente
		}

		if err := s.asignaciones.UpsertTx(tx, &model.Asignacion{
			UsuarioID:  vendedorID,
			ProductoID: productoID,
			Cantidad:   req.Cantidad,
			Precio:     p.Precio,
		}); err != nil {
			return fmt.Errorf("entregar: asignar stock: %w", err)
		}

		trans = model.Transaccion{
			ProductoID: productoID,
			Cantidad:   req.Cantidad,
			Tipo:       model.TipoEntrega,
			Desde:      actorID,
			Hacia:      vendedorID,
			Fecha:      time.Now(),
		}
		if err := s.transacciones.CreateTx(tx, &trans); err != nil {
			return fmt.Errorf("entregar: registrar transaccion: %w", err)
		}

		producto = *p
		producto.Cantidad -= req.Cantidad
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notificarStockBajo(ctx, producto)
	resp := transaccionToResponse(&trans, producto.Nombre)
	return &resp, nil
}

// ── Reducir ───────────────────────────────────────────────────────────────────
// Returns stock from an agent to the warehouse. The product row is locked
// before the allocation row, the same order Entregar, EliminarProducto and
// RegistrarVenta use.

func (s *inventarioService) Reducir(ctx context.Context, actorID uuid.UUID, req dto.MovimientoRequest) (*dto.TransaccionResponse, error) {
	productoID, vendedorID, err := parseMovimiento(req)
	if err != nil {
		return nil, err
	}

	var trans model.Transaccion
	var nombre string
	err = s.tx.RunInTx(ctx, func(tx *gorm.DB) error {
		p, err := s.productos.FindByIDForUpdateTx(tx, productoID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAsignacionNoEncontrada
		}
		if err != nil {
			return fmt.Errorf("reducir: buscar producto: %w", err)
		}
		nombre = p.Nombre

		a, err := s.asignaciones.FindForUpdateTx(tx, vendedorID, productoID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAsignacionNoEncontrada
		}
		if err != nil {
			return fmt.Errorf("reducir: buscar asignacion: %w", err)
		}
		if a.Cantidad < req.Cantidad {
			return ErrCantidadBajaExcedida
		}

		ok, err := s.asignaciones.AjustarCantidadTx(tx, vendedorID, productoID, -req.Cantidad)
		if err != nil {
			return fmt.Errorf("reducir: descontar asignacion: %w", err)
		}
		if !ok {
			return ErrCantidadBajaExcedida
		}
		if _, err := s.productos.AjustarCantidadTx(tx, productoID, req.Cantidad); err != nil {
			return fmt.Errorf("reducir: reponer stock: %w", err)
		}

		trans = model.Transaccion{
			ProductoID: productoID,
			Cantidad:   req.Cantidad,
			Tipo:       model.TipoBaja,
			Desde:      vendedorID,
			Hacia:      actorID,
			Fecha:      time.Now(),
		}
		if err := s.transacciones.CreateTx(tx, &trans); err != nil {
			return fmt.Errorf("reducir: registrar transaccion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := transaccionToResponse(&trans, nombre)
	return &resp, nil
}

// ── EliminarProducto ──────────────────────────────────────────────────────────
// Removes the product together with its allocations, ledger rows and sales.

func (s *inventarioService) EliminarProducto(ctx context.Context, id uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.productos.FindByIDForUpdateTx(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductoNoEncontrado
			}
			return fmt.Errorf("eliminar producto: buscar: %w", err)
		}
		if err := s.asignaciones.DeleteByProductoTx(tx, id); err != nil {
			return fmt.Errorf("eliminar producto: asignaciones: %w", err)
		}
		if err := s.transacciones.DeleteByProductoTx(tx, id); err != nil {
			return fmt.Errorf("eliminar producto: transacciones: %w", err)
		}
		if err := s.ventas.DeleteByProductoTx(tx, id); err != nil {
			return fmt.Errorf("eliminar producto: ventas: %w", err)
		}
		n, err := s.productos.DeleteTx(tx, id)
		if err != nil {
			return fmt.Errorf("eliminar producto: %w", err)
		}
		if n == 0 {
			return ErrProductoNoEncontrado
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidar(ctx)
	return nil
}

func (s *inventarioService) ListarTransacciones(ctx context.Context, filter dto.TransaccionFilter) ([]dto.TransaccionResponse, error) {
	var f repository.TransaccionFilter
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

	rows, err := s.transacciones.List(ctx, f)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TransaccionResponse, len(rows))
	for i := range rows {
		nombre := ""
		if rows[i].Producto != nil {
			nombre = rows[i].Producto.Nombre
		}
		resp[i] = transaccionToResponse(&rows[i], nombre)
	}
	return resp, nil
}

func (s *inventarioService) ListarAsignaciones(ctx context.Context, vendedorID uuid.UUID) ([]dto.AsignacionResponse, error) {
	if err := s.requireVendedor(ctx, vendedorID); err != nil {
		return nil, err
	}
	rows, err := s.asignaciones.ListByUsuario(ctx, vendedorID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AsignacionResponse, 0, len(rows))
	for _, a := range rows {
		r := dto.AsignacionResponse{
			ProductoID: a.ProductoID.String(),
			Precio:     a.Precio,
			Cantidad:   a.Cantidad,
		}
		if a.Producto != nil {
			r.Nombre = a.Producto.Nombre
			r.Foto = a.Producto.Foto
		}
		resp = append(resp, r)
	}
	return resp, nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productos.ListBajoMinimo(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AlertaStockResponse, len(productos))
	for i, p := range productos {
		resp[i] = dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			Cantidad:    p.Cantidad,
			StockMinimo: p.StockMinimo,
		}
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *inventarioService) requireVendedor(ctx context.Context, id uuid.UUID) error {
	u, err := s.usuarios.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrVendedorNoEncontrado
	}
	if err != nil {
		return fmt.Errorf("buscar vendedor: %w", err)
	}
	if u.Rol != model.RolVendedor {
		return ErrVendedorNoEncontrado
	}
	return nil
}

// notificarStockBajo is best effort: a queue failure never fails the delivery.
func (s *inventarioService) notificarStockBajo(ctx context.Context, p model.Producto) {
	if s.alertas == nil || p.StockMinimo <= 0 || p.Cantidad > p.StockMinimo {
		return
	}
	if err := s.alertas.EnqueueAlertaStock(ctx, p); err != nil {
		log.Warn().Err(err).Str("producto_id", p.ID.String()).Msg("no se pudo encolar alerta de stock")
	}
}

func parseMovimiento(req dto.MovimientoRequest) (productoID, vendedorID uuid.UUID, err error) {
	if req.Cantidad <= 0 {
		return uuid.Nil, uuid.Nil, ErrCantidadInvalida
	}
	if productoID, err = uuid.Parse(req.ProductoID); err != nil {
		return uuid.Nil, uuid.Nil, ErrIDInvalido
	}
	if vendedorID, err = uuid.Parse(req.VendedorID); err != nil {
		return uuid.Nil, uuid.Nil, ErrIDInvalido
	}
	return productoID, vendedorID, nil
}

func transaccionToResponse(t *model.Transaccion, productoNombre string) dto.TransaccionResponse {
	return dto.TransaccionResponse{
		ID:         t.ID.String(),
		ProductoID: t.ProductoID.String(),
		Producto:   productoNombre,
		Cantidad:   t.Cantidad,
		Tipo:       t.Tipo,
		Desde:      t.Desde.String(),
		Hacia:      t.Hacia.String(),
		Fecha:      t.Fecha.Format(time.RFC3339),
	}
}
