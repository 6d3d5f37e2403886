package service_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/repository"
	"github.com/menuvercel/mitienda-host/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────
// All stub repositories share one memStore. RunInTx serializes transactions and
// restores a snapshot when fn fails, which is what Postgres gives the services.

type asigKey struct {
	usuario  uuid.UUID
	producto uuid.UUID
}

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	usuarios      map[uuid.UUID]model.Usuario
	productos     map[uuid.UUID]model.Producto
	asignaciones  map[asigKey]model.Asignacion
	transacciones []model.Transaccion
	ventas        []model.Venta

	// failVentaCreate makes the next ventas insert fail.
	failVentaCreate error
	// locks records the row-lock reads in the order they were taken.
	locks []string
}

func newMemStore() *memStore {
	return &memStore{
		usuarios:     make(map[uuid.UUID]model.Usuario),
		productos:    make(map[uuid.UUID]model.Producto),
		asignaciones: make(map[asigKey]model.Asignacion),
	}
}

type memSnapshot struct {
	productos     map[uuid.UUID]model.Producto
	asignaciones  map[asigKey]model.Asignacion
	transacciones []model.Transaccion
	ventas        []model.Venta
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		productos:     make(map[uuid.UUID]model.Producto, len(s.productos)),
		asignaciones:  make(map[asigKey]model.Asignacion, len(s.asignaciones)),
		transacciones: append([]model.Transaccion(nil), s.transacciones...),
		ventas:        append([]model.Venta(nil), s.ventas...),
	}
	for k, v := range s.productos {
		snap.productos[k] = v
	}
	for k, v := range s.asignaciones {
		snap.asignaciones[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productos = snap.productos
	s.asignaciones = snap.asignaciones
	s.transacciones = snap.transacciones
	s.ventas = snap.ventas
}

func (s *memStore) RunInTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

var _ repository.TxRunner = (*memStore)(nil)

// ── Seed / inspection helpers ─────────────────────────────────────────────────

func (s *memStore) addUsuario(nombre, rol string) model.Usuario {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.Usuario{ID: uuid.New(), Nombre: nombre, Rol: rol}
	s.usuarios[u.ID] = u
	return u
}

func (s *memStore) addProducto(nombre string, precio int64, cantidad int) model.Producto {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Producto{ID: uuid.New(), Nombre: nombre, Precio: decimal.NewFromInt(precio), Cantidad: cantidad}
	s.productos[p.ID] = p
	return p
}

func (s *memStore) producto(id uuid.UUID) model.Producto {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productos[id]
}

func (s *memStore) asignacion(usuarioID, productoID uuid.UUID) (model.Asignacion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.asignaciones[asigKey{usuarioID, productoID}]
	return a, ok
}

func (s *memStore) numTransacciones() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transacciones)
}

func (s *memStore) unidadesVendidas(productoID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.ventas {
		if v.ProductoID == productoID {
			n += v.Cantidad
		}
	}
	return n
}

// ledger returns copies of the stored ledger and sales rows.
func (s *memStore) ledger() ([]model.Transaccion, []model.Venta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaccion(nil), s.transacciones...), append([]model.Venta(nil), s.ventas...)
}

func (s *memStore) lockOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locks...)
}

func (s *memStore) numVentas() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ventas)
}

// ── Repositories ──────────────────────────────────────────────────────────────

type stubProductoRepo struct{ s *memStore }

func (r stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.productos[p.ID] = *p
	return nil
}

func (r stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.find(id)
}

func (r stubProductoRepo) List(_ context.Context) ([]model.Producto, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Producto, 0, len(r.s.productos))
	for _, p := range r.s.productos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r stubProductoRepo) ListBajoMinimo(ctx context.Context) ([]model.Producto, error) {
	all, _ := r.List(ctx)
	var out []model.Producto
	for _, p := range all {
		if p.StockMinimo > 0 && p.Cantidad <= p.StockMinimo {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r stubProductoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, err := r.find(id)
	r.s.mu.Lock()
	r.s.locks = append(r.s.locks, "producto:update")
	r.s.mu.Unlock()
	return p, err
}

func (r stubProductoRepo) FindByIDForShareTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	p, err := r.find(id)
	r.s.mu.Lock()
	r.s.locks = append(r.s.locks, "producto:share")
	r.s.mu.Unlock()
	return p, err
}

func (r stubProductoRepo) find(id uuid.UUID) (*model.Producto, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r stubProductoRepo) AjustarCantidadTx(_ *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.productos[id]
	if !ok || p.Cantidad+delta < 0 {
		return false, nil
	}
	p.Cantidad += delta
	r.s.productos[id] = p
	return true, nil
}

func (r stubProductoRepo) UpdateTx(_ *gorm.DB, p *model.Producto) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.productos[p.ID] = *p
	return nil
}

func (r stubProductoRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.productos[id]; !ok {
		return 0, nil
	}
	delete(r.s.productos, id)
	return 1, nil
}

var _ repository.ProductoRepository = stubProductoRepo{}

type stubAsignacionRepo struct{ s *memStore }

func (r stubAsignacionRepo) ListByUsuario(_ context.Context, usuarioID uuid.UUID) ([]model.Asignacion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Asignacion
	for k, a := range r.s.asignaciones {
		if k.usuario != usuarioID || a.Cantidad <= 0 {
			continue
		}
		if p, ok := r.s.productos[k.producto]; ok {
			a.Producto = &p
		}
		out = append(out, a)
	}
	return out, nil
}

func (r stubAsignacionRepo) FindForUpdateTx(_ *gorm.DB, usuarioID, productoID uuid.UUID) (*model.Asignacion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.locks = append(r.s.locks, "asignacion:update")
	a, ok := r.s.asignaciones[asigKey{usuarioID, productoID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r stubAsignacionRepo) UpsertTx(_ *gorm.DB, a *model.Asignacion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := asigKey{a.UsuarioID, a.ProductoID}
	cur, ok := r.s.asignaciones[k]
	if !ok {
		cur = model.Asignacion{UsuarioID: a.UsuarioID, ProductoID: a.ProductoID}
	}
	cur.Cantidad += a.Cantidad
	cur.Precio = a.Precio
	cur.UpdatedAt = time.Now()
	r.s.asignaciones[k] = cur
	return nil
}

func (r stubAsignacionRepo) AjustarCantidadTx(_ *gorm.DB, usuarioID, productoID uuid.UUID, delta int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := asigKey{usuarioID, productoID}
	a, ok := r.s.asignaciones[k]
	if !ok || a.Cantidad+delta < 0 {
		return false, nil
	}
	a.Cantidad += delta
	r.s.asignaciones[k] = a
	return true, nil
}

func (r stubAsignacionRepo) DeleteByProductoTx(_ *gorm.DB, productoID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.asignaciones {
		if k.producto == productoID {
			delete(r.s.asignaciones, k)
		}
	}
	return nil
}

var _ repository.AsignacionRepository = stubAsignacionRepo{}

type stubTransaccionRepo struct{ s *memStore }

func (r stubTransaccionRepo) CreateTx(_ *gorm.DB, t *model.Transaccion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.s.transacciones = append(r.s.transacciones, *t)
	return nil
}

func (r stubTransaccionRepo) List(_ context.Context, f repository.TransaccionFilter) ([]model.Transaccion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Transaccion
	for i := len(r.s.transacciones) - 1; i >= 0; i-- {
		t := r.s.transacciones[i]
		if f.VendedorID != nil && t.Desde != *f.VendedorID && t.Hacia != *f.VendedorID {
			continue
		}
		if f.ProductoID != nil && t.ProductoID != *f.ProductoID {
			continue
		}
		if p, ok := r.s.productos[t.ProductoID]; ok {
			t.Producto = &p
		}
		out = append(out, t)
	}
	return out, nil
}

func (r stubTransaccionRepo) DeleteByProductoTx(_ *gorm.DB, productoID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.transacciones[:0:0]
	for _, t := range r.s.transacciones {
		if t.ProductoID != productoID {
			kept = append(kept, t)
		}
	}
	r.s.transacciones = kept
	return nil
}

var _ repository.TransaccionRepository = stubTransaccionRepo{}

type stubVentaRepo struct{ s *memStore }

func (r stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failVentaCreate; err != nil {
		r.s.failVentaCreate = nil
		return err
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.s.ventas = append(r.s.ventas, *v)
	return nil
}

func (r stubVentaRepo) List(_ context.Context, f repository.VentaFilter) ([]model.Venta, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Venta
	for _, v := range r.s.ventas {
		if f.VendedorID != nil && v.VendedorID != *f.VendedorID {
			continue
		}
		if f.ProductoID != nil && v.ProductoID != *f.ProductoID {
			continue
		}
		if !f.Desde.IsZero() && v.Fecha.Before(f.Desde) {
			continue
		}
		if !f.Hasta.IsZero() && !v.Fecha.Before(f.Hasta) {
			continue
		}
		if p, ok := r.s.productos[v.ProductoID]; ok {
			v.Producto = &p
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out, nil
}

func (r stubVentaRepo) DeleteByProductoTx(_ *gorm.DB, productoID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.ventas[:0:0]
	for _, v := range r.s.ventas {
		if v.ProductoID != productoID {
			kept = append(kept, v)
		}
	}
	r.s.ventas = kept
	return nil
}

var _ repository.VentaRepository = stubVentaRepo{}

type stubUsuarioRepo struct{ s *memStore }

func (r stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.usuarios {
		if existing.Nombre == u.Nombre {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.s.usuarios[u.ID] = *u
	return nil
}

func (r stubUsuarioRepo) FindByNombre(_ context.Context, nombre string) (*model.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.usuarios {
		if u.Nombre == nombre {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r stubUsuarioRepo) ListVendedores(_ context.Context) ([]model.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.s.usuarios {
		if u.Rol == model.RolVendedor {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.usuarios[u.ID] = *u
	return nil
}

var _ repository.UsuarioRepository = stubUsuarioRepo{}

// ── Collaborators ─────────────────────────────────────────────────────────────

type fakeNotifier struct {
	mu       sync.Mutex
	alertas  []model.Producto
	failWith error
}

func (n *fakeNotifier) EnqueueAlertaStock(_ context.Context, p model.Producto) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.alertas = append(n.alertas, p)
	return nil
}

var _ service.AlertaStockNotifier = (*fakeNotifier)(nil)

type fakePhotoStore struct {
	keys     []string
	failWith error
}

func (f *fakePhotoStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

var _ service.PhotoStore = (*fakePhotoStore)(nil)

var errBoom = errors.New("boom")

// ── Service factory ───────────────────────────────────────────────────────────

type testEnv struct {
	store      *memStore
	notifier   *fakeNotifier
	fotos      *fakePhotoStore
	almacen    model.Usuario
	inventario service.InventarioService
	ventas     service.VentaService
	productos  service.ProductoService
	reportes   service.ReporteService
}

func newTestEnv() *testEnv {
	s := newMemStore()
	notifier := &fakeNotifier{}
	fotos := &fakePhotoStore{}
	productos := stubProductoRepo{s}
	asignaciones := stubAsignacionRepo{s}
	transacciones := stubTransaccionRepo{s}
	ventas := stubVentaRepo{s}
	usuarios := stubUsuarioRepo{s}
	cache := service.NewReportCache(nil, 0)

	return &testEnv{
		store:      s,
		notifier:   notifier,
		fotos:      fotos,
		almacen:    s.addUsuario("almacen", model.RolAlmacen),
		inventario: service.NewInventarioService(s, productos, asignaciones, transacciones, ventas, usuarios, notifier, cache),
		ventas:     service.NewVentaService(s, productos, ventas, asignaciones, cache, time.UTC),
		productos:  service.NewProductoService(s, productos, fotos),
		reportes:   service.NewReporteService(ventas, usuarios, cache, time.UTC),
	}
}
