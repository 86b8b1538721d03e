// Package migrations embeds the goose SQL migrations for every supported dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql
var postgres embed.FS

//go:embed sqlite/*.sql
var sqlite embed.FS

// Postgres returns the PostgreSQL migrations rooted at the migration files.
func Postgres() fs.FS {
	sub, _ := fs.Sub(postgres, "postgres")
	return sub
}

// SQLite returns the SQLite migrations rooted at the migration files.
func SQLite() fs.FS {
	sub, _ := fs.Sub(sqlite, "sqlite")
	return sub
}
