package repository

import (
	"context"

	"github.com/menuvercel/mitienda-host/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransaccionFilter defines filters for listing ledger entries.
// VendedorID matches rows where the agent is either party of the movement.
type TransaccionFilter struct {
	VendedorID *uuid.UUID
	ProductoID *uuid.UUID
}

type TransaccionRepository interface {
	CreateTx(tx *gorm.DB, t *model.Transaccion) error
	List(ctx context.Context, filter TransaccionFilter) ([]model.Transaccion, error)
	DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) error
}

type transaccionRepo struct{ db *gorm.DB }

func NewTransaccionRepository(db *gorm.DB) TransaccionRepository {
	return &transaccionRepo{db: db}
}

func (r *transaccionRepo) CreateTx(tx *gorm.DB, t *model.Transaccion) error {
	return tx.Create(t).Error
}

func (r *transaccionRepo) List(ctx context.Context, filter TransaccionFilter) ([]model.Transaccion, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaccion{}).Preload("Producto")
	if filter.VendedorID != nil {
		q = q.Where("desde = ? OR hacia = ?", *filter.VendedorID, *filter.VendedorID)
	}
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}

	var transacciones []model.Transaccion
	err := q.Order("fecha DESC").Find(&transacciones).Error
	return transacciones, err
}

func (r *transaccionRepo) DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) error {
	return tx.Where("producto_id = ?", productoID).Delete(&model.Transaccion{}).Error
}
