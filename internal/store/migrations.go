package store

import (
	"embed"
)

// migrationsFS embeds the schema migration set applied to both backends.
// Filenames follow golang-migrate's <version>_<name>.<up|down>.sql
// convention so the same tree can be read by the iofs source driver.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS exposes the embedded migration tree to backend packages
// (internal/store/sqlite, internal/store/pg).
func MigrationsFS() embed.FS { return migrationsFS }
