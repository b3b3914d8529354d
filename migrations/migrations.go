// Package migrations embeds the reference schema of the translation graph.
// The importer never applies it; test helpers and operators do, with goose.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the PostgreSQL migrations as a goose-compatible filesystem.
func Postgres() fs.FS { return sub("postgres") }

// SQLite returns the SQLite migrations as a goose-compatible filesystem.
func SQLite() fs.FS { return sub("sqlite") }

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a compile-time constant matched by the embed pattern.
		panic(err)
	}
	return fsys
}
