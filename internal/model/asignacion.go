package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asignacion is the stock a Vendedor holds for one product.
// There is at most one row per (usuario, producto); repeated deliveries accumulate.
// Precio is the product price at the time of the last delivery and is what sales are charged at.
type Asignacion struct {
	UsuarioID  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductoID uuid.UUID       `gorm:"type:uuid;primaryKey;index"`
	Cantidad   int             `gorm:"not null;default:0;check:chk_usuario_productos_cantidad,cantidad >= 0"`
	Precio     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UpdatedAt  time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Asignacion) TableName() string { return "usuario_productos" }
