package audit

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations creates the auth_events table. Apply it with its own goose
// version table, separate from the identity migrations.
var Migrations fs.FS = func() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}()

// MigrationsTable is the goose version table for Migrations.
const MigrationsTable = "audit_schema_migrations"
