package service_test

import (
	"context"
	"testing"

	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movimiento(p model.Producto, v model.Usuario, n int) dto.MovimientoRequest {
	return dto.MovimientoRequest{ProductoID: p.ID.String(), VendedorID: v.ID.String(), Cantidad: n}
}

func TestEntregar_MovesStockToVendedor(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 100)
	v := env.store.addUsuario("Ana", model.RolVendedor)

	resp, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 30))
	require.NoError(t, err)

	assert.Equal(t, model.TipoEntrega, resp.Tipo)
	assert.Equal(t, 30, resp.Cantidad)
	assert.Equal(t, "Widget", resp.Producto)
	assert.Equal(t, env.almacen.ID.String(), resp.Desde)
	assert.Equal(t, v.ID.String(), resp.Hacia)

	assert.Equal(t, 70, env.store.producto(p.ID).Cantidad)
	a, ok := env.store.asignacion(v.ID, p.ID)
	require.True(t, ok)
	assert.Equal(t, 30, a.Cantidad)
	assert.True(t, a.Precio.Equal(decimal.NewFromInt(10)))
}

func TestEntregar_AccumulatesRepeatedDeliveries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 100)
	v := env.store.addUsuario("Ana", model.RolVendedor)

	_, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 10))
	require.NoError(t, err)
	_, err = env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 15))
	require.NoError(t, err)

	a, _ := env.store.asignacion(v.ID, p.ID)
	assert.Equal(t, 25, a.Cantidad)
	assert.Equal(t, 75, env.store.producto(p.ID).Cantidad)
	assert.Equal(t, 2, env.store.numTransacciones())
}

func TestEntregar_StockInsuficiente_NoWrites(t *testing.T) {
	env := newTestEnv()
	p := env.store.addProducto("Widget", 10, 5)
	v := env.store.addUsuario("Ana", model.RolVendedor)

	_, err := env.inventario.Entregar(context.Background(), env.almacen.ID, movimiento(p, v, 6))
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)

	assert.Equal(t, 5, env.store.producto(p.ID).Cantidad)
	_, ok := env.store.asignacion(v.ID, p.ID)
	assert.False(t, ok)
	assert.Zero(t, env.store.numTransacciones())
}

func TestEntregar_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 5)
	v := env.store.addUsuario("Ana", model.RolVendedor)

	_, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 0))
	assert.ErrorIs(t, err, service.ErrCantidadInvalida)

	_, err = env.inventario.Entregar(ctx, env.almacen.ID, dto.MovimientoRequest{ProductoID: "x", VendedorID: v.ID.String(), Cantidad: 1})
	assert.ErrorIs(t, err, service.ErrIDInvalido)

	// The warehouse user is not a valid recipient.
	_, err = env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, env.almacen, 1))
	assert.ErrorIs(t, err, service.ErrVendedorNoEncontrado)

	_, err = env.inventario.Entregar(ctx, env.almacen.ID, dto.MovimientoRequest{ProductoID: uuid.NewString(), VendedorID: v.ID.String(), Cantidad: 1})
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)
}

func TestEntregar_EnqueuesAlertaAtMinimum(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 12)
	p.StockMinimo = 5
	require.NoError(t, stubProductoRepo{env.store}.UpdateTx(nil, &p))
	v := env.store.addUsuario("Ana", model.RolVendedor)

	_, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 6))
	require.NoError(t, err)
	assert.Empty(t, env.notifier.alertas, "6 left is above the minimum")

	_, err = env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 1))
	require.NoError(t, err)
	require.Len(t, env.notifier.alertas, 1)
	assert.Equal(t, 5, env.notifier.alertas[0].Cantidad)

	alertas, err := env.inventario.ObtenerAlertas(ctx)
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, p.ID.String(), alertas[0].ProductoID)
}

func TestEntregar_AlertaFailureDoesNotFailDelivery(t *testing.T) {
	env := newTestEnv()
	env.notifier.failWith = errBoom
	p := env.store.addProducto("Widget", 10, 1)
	p.StockMinimo = 1
	require.NoError(t, stubProductoRepo{env.store}.UpdateTx(nil, &p))
	v := env.store.addUsuario("Ana", model.RolVendedor)

	_, err := env.inventario.Entregar(context.Background(), env.almacen.ID, movimiento(p, v, 1))
	assert.NoError(t, err)
	assert.Equal(t, 0, env.store.producto(p.ID).Cantidad)
}

func TestReducir_ReturnsStockToAlmacen(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 100)
	v := env.store.addUsuario("Ana", model.RolVendedor)
	_, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 30))
	require.NoError(t, err)

	resp, err := env.inventario.Reducir(ctx, env.almacen.ID, movimiento(p, v, 10))
	require.NoError(t, err)
	assert.Equal(t, model.TipoBaja, resp.Tipo)
	assert.Equal(t, v.ID.String(), resp.Desde)
	assert.Equal(t, env.almacen.ID.String(), resp.Hacia)

	assert.Equal(t, 80, env.store.producto(p.ID).Cantidad)
	a, _ := env.store.asignacion(v.ID, p.ID)
	assert.Equal(t, 20, a.Cantidad)
}

func TestReducir_Errors(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 100)
	v := env.store.addUsuario("Ana", model.RolVendedor)

	_, err := env.inventario.Reducir(ctx, env.almacen.ID, movimiento(p, v, 1))
	assert.ErrorIs(t, err, service.ErrAsignacionNoEncontrada)

	_, err = env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 3))
	require.NoError(t, err)
	_, err = env.inventario.Reducir(ctx, env.almacen.ID, movimiento(p, v, 4))
	assert.ErrorIs(t, err, service.ErrCantidadBajaExcedida)

	assert.Equal(t, 97, env.store.producto(p.ID).Cantidad)
	a, _ := env.store.asignacion(v.ID, p.ID)
	assert.Equal(t, 3, a.Cantidad)
	assert.Equal(t, 1, env.store.numTransacciones())
}

func TestReducir_ToZeroHidesAllocation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 10)
	v := env.store.addUsuario("Ana", model.RolVendedor)
	_, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 4))
	require.NoError(t, err)
	_, err = env.inventario.Reducir(ctx, env.almacen.ID, movimiento(p, v, 4))
	require.NoError(t, err)

	asignaciones, err := env.inventario.ListarAsignaciones(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, asignaciones)
}

func TestEliminarProducto_Cascades(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 10)
	otro := env.store.addProducto("Gadget", 5, 10)
	v := env.store.addUsuario("Ana", model.RolVendedor)
	_, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, v, 4))
	require.NoError(t, err)
	_, err = env.inventario.Entregar(ctx, env.almacen.ID, movimiento(otro, v, 2))
	require.NoError(t, err)
	_, err = env.ventas.RegistrarVenta(ctx, v.ID, dto.RegistrarVentaRequest{ProductoID: p.ID.String(), Cantidad: 1, Fecha: "2024-01-02"})
	require.NoError(t, err)

	require.NoError(t, env.inventario.EliminarProducto(ctx, p.ID))

	_, err = env.productos.ObtenerPorID(ctx, p.ID)
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)
	_, ok := env.store.asignacion(v.ID, p.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, env.store.numTransacciones(), "only the Gadget delivery remains")
	assert.Zero(t, env.store.numVentas())

	assert.ErrorIs(t, env.inventario.EliminarProducto(ctx, p.ID), service.ErrProductoNoEncontrado)
}

func TestListarTransacciones_FiltersByVendedorAndProducto(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 100)
	q := env.store.addProducto("Gadget", 5, 100)
	ana := env.store.addUsuario("Ana", model.RolVendedor)
	beto := env.store.addUsuario("Beto", model.RolVendedor)

	for _, m := range []dto.MovimientoRequest{
		movimiento(p, ana, 1), movimiento(q, ana, 2), movimiento(p, beto, 3),
	} {
		_, err := env.inventario.Entregar(ctx, env.almacen.ID, m)
		require.NoError(t, err)
	}
	_, err := env.inventario.Reducir(ctx, env.almacen.ID, movimiento(p, ana, 1))
	require.NoError(t, err)

	deAna, err := env.inventario.ListarTransacciones(ctx, dto.TransaccionFilter{VendedorID: ana.ID.String()})
	require.NoError(t, err)
	assert.Len(t, deAna, 3, "deliveries to and returns from Ana")

	widgetAna, err := env.inventario.ListarTransacciones(ctx, dto.TransaccionFilter{VendedorID: ana.ID.String(), ProductoID: p.ID.String()})
	require.NoError(t, err)
	require.Len(t, widgetAna, 2)
	assert.Equal(t, model.TipoBaja, widgetAna[0].Tipo, "newest first")

	todas, err := env.inventario.ListarTransacciones(ctx, dto.TransaccionFilter{})
	require.NoError(t, err)
	assert.Len(t, todas, 4)

	_, err = env.inventario.ListarTransacciones(ctx, dto.TransaccionFilter{VendedorID: "nope"})
	assert.ErrorIs(t, err, service.ErrIDInvalido)
}

// Stock is conserved: warehouse plus allocations plus units sold equals the initial quantity.
func TestInventario_ConservesStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	p := env.store.addProducto("Widget", 10, 50)
	ana := env.store.addUsuario("Ana", model.RolVendedor)
	beto := env.store.addUsuario("Beto", model.RolVendedor)

	steps := []func() error{
		func() error { _, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, ana, 20)); return err },
		func() error { _, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, beto, 15)); return err },
		func() error {
			_, err := env.ventas.RegistrarVenta(ctx, ana.ID, dto.RegistrarVentaRequest{ProductoID: p.ID.String(), Cantidad: 7, Fecha: "2024-03-01"})
			return err
		},
		func() error { _, err := env.inventario.Reducir(ctx, env.almacen.ID, movimiento(p, beto, 5)); return err },
		func() error { _, err := env.inventario.Entregar(ctx, env.almacen.ID, movimiento(p, beto, 100)); return err },
	}
	for _, step := range steps {
		_ = step()

		a, _ := env.store.asignacion(ana.ID, p.ID)
		b, _ := env.store.asignacion(beto.ID, p.ID)
		total := env.store.producto(p.ID).Cantidad + a.Cantidad + b.Cantidad + env.store.unidadesVendidas(p.ID)
		assert.Equal(t, 50, total)
		assert.GreaterOrEqual(t, env.store.producto(p.ID).Cantidad, 0)
		assert.GreaterOrEqual(t, a.Cantidad, 0)
		assert.GreaterOrEqual(t, b.Cantidad, 0)
	}
}
