package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolAlmacen  = "Almacen"
	RolVendedor = "Vendedor"
)

// Usuario stores system users with role-based access.
// Rol: "Almacen" | "Vendedor"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Telefono     *string
	Rol          string `gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
