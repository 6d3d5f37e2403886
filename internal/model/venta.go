package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is an immutable sale recorded by a Vendedor against its allocated stock.
// PrecioUnitario is copied from the allocation, not from the live product price.
type Venta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VendedorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Fecha          time.Time       `gorm:"not null;index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Vendedor *Usuario  `gorm:"foreignKey:VendedorID"`
}
