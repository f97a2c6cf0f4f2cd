package history

import "embed"

// Migrations embeds the SQL files that create the run-history schema, for
// use with database.NewMigrator / database.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory within Migrations holding the SQL files.
const MigrationsDir = "migrations"
