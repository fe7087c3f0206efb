// Package migrations embeds the SQL migrations applied during store
// bootstrap.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
