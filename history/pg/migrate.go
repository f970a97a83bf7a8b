package pg

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migration sql
var resources embed.FS

const migrationsTable = "history_schema_migrations"

// migrateDatabase applies all pending migrations to the schema of the connection pool.
func migrateDatabase(pgPool *pgxpool.Pool, databaseSchema string) error {
	source, err := iofs.New(resources, "migration")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %v", err)
	}

	db := stdlib.OpenDBFromPool(pgPool)

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{
		MigrationsTable: migrationsTable,
		SchemaName:      databaseSchema,
	})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to create migration: %v", err)
	}

	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
