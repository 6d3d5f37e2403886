package repository

import (
	"context"

	"github.com/menuvercel/mitienda-host/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context) ([]model.Producto, error)
	// ListBajoMinimo returns products with a configured stock_minimo whose cantidad is at or below it.
	ListBajoMinimo(ctx context.Context) ([]model.Producto, error)

	// Used inside transactions; callers must pass the tx instance
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// FindByIDForShareTx takes FOR SHARE: concurrent sales of the product proceed,
	// writers of the product row wait.
	FindByIDForShareTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	// AjustarCantidadTx adds delta to cantidad only if the result stays >= 0.
	// It reports false when no row matched (missing product or insufficient stock).
	AjustarCantidadTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error)
	UpdateTx(tx *gorm.DB, p *model.Producto) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) (int64, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Save(p).Error
}

func (r *productoRepo) ListBajoMinimo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("stock_minimo > 0 AND cantidad <= stock_minimo").
		Order("cantidad ASC, nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindByIDForShareTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) AjustarCantidadTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND cantidad + ? >= 0", id, delta).
		Update("cantidad", gorm.Expr("cantidad + ?", delta))
	return res.RowsAffected > 0, res.Error
}

func (r *productoRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Where("id = ?", id).Delete(&model.Producto{})
	return res.RowsAffected, res.Error
}
