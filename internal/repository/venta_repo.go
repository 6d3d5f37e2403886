package repository

import (
	"context"
	"time"

	"github.com/menuvercel/mitienda-host/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VentaFilter narrows a sales listing. Zero Desde/Hasta leave that bound open;
// Hasta is exclusive.
type VentaFilter struct {
	VendedorID *uuid.UUID
	ProductoID *uuid.UUID
	Desde      time.Time
	Hasta      time.Time
}

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, error)
	DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) error
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{}).Preload("Producto")
	if filter.VendedorID != nil {
		q = q.Where("vendedor_id = ?", *filter.VendedorID)
	}
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if !filter.Desde.IsZero() {
		q = q.Where("fecha >= ?", filter.Desde)
	}
	if !filter.Hasta.IsZero() {
		q = q.Where("fecha < ?", filter.Hasta)
	}

	var ventas []model.Venta
	err := q.Order("fecha DESC").Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) DeleteByProductoTx(tx *gorm.DB, productoID uuid.UUID) error {
	return tx.Where("producto_id = ?", productoID).Delete(&model.Venta{}).Error
}
