// Package migrations embeds the SQL schema migrations applied at startup.
package migrations

import "embed"

// FS holds the embedded migration files, consumed by golang-migrate's iofs source.
//
//go:embed *.sql
var FS embed.FS
