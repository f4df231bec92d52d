// Package migrations embeds the schema for each supported SQL dialect.
// Files follow golang-migrate naming: NNNNNN_name.up.sql / .down.sql.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
