package infra

import (
	"fmt"

	"github.com/menuvercel/mitienda-host/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the schema
// up to date. TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := applyPreMigrationPatches(db); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.Asignacion{},
		&model.Transaccion{},
		&model.Venta{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applyPreMigrationPatches prepares the database for AutoMigrate.
// gen_random_uuid() is built in from PostgreSQL 13; older servers need pgcrypto.
func applyPreMigrationPatches(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// report queries filter by agent and date range
		`CREATE INDEX IF NOT EXISTS idx_ventas_vendedor_fecha ON ventas (vendedor_id, fecha)`,
		// the ledger is listed newest first
		`CREATE INDEX IF NOT EXISTS idx_transacciones_fecha ON transacciones (fecha DESC)`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
