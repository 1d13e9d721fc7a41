// Package migrations embeds the SQLite schema for the durable distance
// cache and versions it with golang-migrate, the way
// banshee-data-velocity.report/internal/db/migrate.go versions its own
// SQLite schema via an iofs source driver.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
