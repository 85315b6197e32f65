package postgres

import "embed"

// MigrationsFS holds the embedded goose migrations so the server binary
// can apply them without a migrations directory on disk.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the path of the migrations inside MigrationsFS.
const MigrationsDir = "migrations"
