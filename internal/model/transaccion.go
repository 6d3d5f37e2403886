package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TipoEntrega = "Entrega" // almacen -> vendedor
	TipoBaja    = "Baja"    // vendedor -> almacen
)

// Transaccion is one immutable stock movement between the warehouse and an agent.
// Rows are append-only; they disappear only when their product is deleted.
type Transaccion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad   int       `gorm:"not null"`
	Tipo       string    `gorm:"type:varchar(10);not null"`
	Desde      uuid.UUID `gorm:"type:uuid;not null;index"`
	Hacia      uuid.UUID `gorm:"type:uuid;not null;index"`
	Fecha      time.Time `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (transaccions -> transacciones).
func (Transaccion) TableName() string { return "transacciones" }
