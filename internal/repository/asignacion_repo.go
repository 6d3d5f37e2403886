package repository

import (
	"context"

	"github.com/menuvercel/mitienda-host/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AsignacionRepository manages per-agent stock allocations (usuario_productos).
type AsignacionRepository interface {
	// ListByUsuario returns the agent's allocations with cantidad > 0, product preloaded.
	ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Asignacion, error)

	FindForUpdateTx(tx *gorm.DB, usuarioID, productoID uuid.UUID) (*model.Asignacion, error)
	// UpsertTx adds a.Cantidad to the existing row (or inserts it) and overwrites the price snapshot.
	UpsertTx(tx *gorm.DB, a *model.Asignacion) error
	// AjustarCantidadTx adds delta only if the result stays >= 0; false when no row matched.
	AjustarCantidadTx(tx *gorm.DB, usuarioID, productoID uuid.UUID, delta int) (bool, error)
	DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) error
}

type asignacionRepo struct{ db *gorm.DB }

func NewAsignacionRepository(db *gorm.DB) AsignacionRepository { return &asignacionRepo{db: db} }

func (r *asignacionRepo) ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Asignacion, error) {
	var asignaciones []model.Asignacion
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Where("usuario_id = ? AND cantidad > 0", usuarioID).
		Find(&asignaciones).Error
	return asignaciones, err
}

func (r *asignacionRepo) FindForUpdateTx(tx *gorm.DB, usuarioID, productoID uuid.UUID) (*model.Asignacion, error) {
	var a model.Asignacion
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("usuario_id = ? AND producto_id = ?", usuarioID, productoID).
		First(&a).Error
	return &a, err
}

func (r *asignacionRepo) UpsertTx(tx *gorm.DB, a *model.Asignacion) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "usuario_id"}, {Name: "producto_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "cantidad"}, Value: gorm.Expr("usuario_productos.cantidad + EXCLUDED.cantidad")},
			{Column: clause.Column{Name: "precio"}, Value: gorm.Expr("EXCLUDED.precio")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("EXCLUDED.updated_at")},
		},
	}).Create(a).Error
}

func (r *asignacionRepo) AjustarCantidadTx(tx *gorm.DB, usuarioID, productoID uuid.UUID, delta int) (bool, error) {
	res := tx.Model(&model.Asignacion{}).
		Where("usuario_id = ? AND producto_id = ? AND cantidad + ? >= 0", usuarioID, productoID, delta).
		Update("cantidad", gorm.Expr("cantidad + ?", delta))
	return res.RowsAffected > 0, res.Error
}

func (r *asignacionRepo) DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) error {
	return tx.Where("producto_id = ?", productoID).Delete(&model.Asignacion{}).Error
}
