package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog item held in the central warehouse.
// Cantidad is the warehouse quantity on hand; stock handed to agents lives in Asignacion.
type Producto struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre   string          `gorm:"index;not null"`
	Precio   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cantidad int             `gorm:"not null;default:0;check:chk_productos_cantidad,cantidad >= 0"`
	// Foto is the public URL returned by the photo store; empty when no photo was uploaded.
	Foto        string `gorm:"not null;default:''"`
	StockMinimo int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default pluralization for Spanish names.
func (Producto) TableName() string { return "productos" }
